package evidencia

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

// EvidenciaService define o contrato que o Handler espera da camada de Serviço.
type EvidenciaService interface {
	Criar(ctx context.Context, evidencia domain.Evidencia) (domain.Evidencia, error)
	CriarMultiplas(ctx context.Context, idCaso int64, evidencias []domain.Evidencia) ([]domain.Evidencia, error)
	Listar(ctx context.Context) ([]domain.Evidencia, error)
	ListarAgrupadasPorCaso(ctx context.Context) ([]domain.EvidenciasDoCaso, error)
	ObterPorID(ctx context.Context, id string) (domain.Evidencia, error)
	ListarPorCaso(ctx context.Context, idCaso int64) ([]domain.Evidencia, error)
	Atualizar(ctx context.Context, id string, patch domain.AtualizacaoEvidencia) (domain.Evidencia, error)
	Excluir(ctx context.Context, id string) error
	ExcluirTodas(ctx context.Context, confirmacao string) (int64, error)
}

// Handler agrupa os métodos HTTP do recurso de evidências.
type Handler struct {
	Service EvidenciaService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EvidenciaService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

type loteEvidencias struct {
	IDCaso     int64              `json:"id_caso"`
	Evidencias []domain.Evidencia `json:"evidencias"`
}

type confirmacaoExclusao struct {
	Confirmacao string `json:"confirmacao"`
}

func (h *Handler) respondSucesso(w http.ResponseWriter, status int, body map[string]interface{}) {
	body["sucesso"] = true

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("Falha ao codificar JSON de resposta de evidência.", err)
	}
}

func (h *Handler) respondErro(w http.ResponseWriter, r *http.Request, err error) {
	status, category, mensagem := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro de servidor no recurso de evidências.", err)
	} else {
		h.Logger.Debug("Requisição de evidência rejeitada.", map[string]interface{}{
			"path":     r.URL.Path,
			"status":   status,
			"category": category,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sucesso":  false,
		"mensagem": mensagem,
	})
}

// Criar lida com POST /api/evidencias.
// @Summary Cria uma nova evidência
// @Description Cria uma evidência vinculada a um caso existente pelo número sequencial.
// @Tags evidencias
// @Accept json
// @Produce json
// @Param evidencia body domain.Evidencia true "Dados da evidência"
// @Success 201 {object} domain.Evidencia "Evidência criada com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Caso não encontrado"
// @Security ApiKeyAuth
// @Router /evidencias [post]
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var ev domain.Evidencia
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	criada, err := h.Service.Criar(r.Context(), ev)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusCreated, map[string]interface{}{
		"dados":    criada,
		"mensagem": "Evidência criada com sucesso",
	})
}

// CriarMultiplas lida com POST /api/evidencias/multiplas.
// @Summary Cria múltiplas evidências para um caso
// @Description Insere o lote inteiro em uma única transação; qualquer falha descarta tudo.
// @Tags evidencias
// @Accept json
// @Produce json
// @Param lote body loteEvidencias true "Número do caso e lista de evidências"
// @Success 201 {array} domain.Evidencia "Evidências criadas com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Caso não encontrado"
// @Security ApiKeyAuth
// @Router /evidencias/multiplas [post]
func (h *Handler) CriarMultiplas(w http.ResponseWriter, r *http.Request) {
	var lote loteEvidencias
	if err := json.NewDecoder(r.Body).Decode(&lote); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	criadas, err := h.Service.CriarMultiplas(r.Context(), lote.IDCaso, lote.Evidencias)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusCreated, map[string]interface{}{
		"dados":    criadas,
		"contagem": len(criadas),
		"mensagem": "Evidências criadas com sucesso",
	})
}

// Listar lida com GET /api/evidencias.
// @Summary Lista todas as evidências
// @Tags evidencias
// @Produce json
// @Success 200 {array} domain.Evidencia "Lista de evidências"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /evidencias [get]
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	evidencias, err := h.Service.Listar(r.Context())
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"dados":    evidencias,
		"contagem": len(evidencias),
	})
}

// ListarAgrupadas lida com GET /api/evidencias/agrupadas.
// @Summary Lista as evidências agrupadas por caso
// @Tags evidencias
// @Produce json
// @Success 200 {array} domain.EvidenciasDoCaso "Evidências agrupadas por caso"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /evidencias/agrupadas [get]
func (h *Handler) ListarAgrupadas(w http.ResponseWriter, r *http.Request) {
	grupos, err := h.Service.ListarAgrupadasPorCaso(r.Context())
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"dados":    grupos,
		"contagem": len(grupos),
	})
}

// ObterPorID lida com GET /api/evidencias/{id}.
// @Summary Obtém uma evidência pelo ID
// @Tags evidencias
// @Produce json
// @Param id path string true "ID da evidência"
// @Success 200 {object} domain.Evidencia "Evidência encontrada"
// @Failure 404 {object} domain.ErrorResponse "Evidência não encontrada"
// @Security ApiKeyAuth
// @Router /evidencias/{id} [get]
func (h *Handler) ObterPorID(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Service.ObterPorID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"dados": ev,
	})
}

// ListarPorCaso lida com GET /api/evidencias/caso/{id_caso}.
// @Summary Lista as evidências de um caso
// @Tags evidencias
// @Produce json
// @Param id_caso path int true "Número sequencial do caso"
// @Success 200 {array} domain.Evidencia "Evidências do caso"
// @Failure 404 {object} domain.ErrorResponse "Nenhuma evidência encontrada para este caso"
// @Security ApiKeyAuth
// @Router /evidencias/caso/{id_caso} [get]
func (h *Handler) ListarPorCaso(w http.ResponseWriter, r *http.Request) {
	idCaso, err := strconv.ParseInt(chi.URLParam(r, "id_caso"), 10, 64)
	if err != nil {
		h.respondErro(w, r, apperror.NewValidationError("ID do caso deve ser um número"))
		return
	}

	evidencias, err := h.Service.ListarPorCaso(r.Context(), idCaso)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"dados":    evidencias,
		"contagem": len(evidencias),
	})
}

// Atualizar lida com PUT /api/evidencias/{id}.
// @Summary Atualiza uma evidência
// @Description Altera somente os campos enviados no payload; os omitidos são preservados. O vínculo com o caso não muda.
// @Tags evidencias
// @Accept json
// @Produce json
// @Param id path string true "ID da evidência"
// @Param evidencia body domain.AtualizacaoEvidencia true "Campos a alterar"
// @Success 200 {object} domain.Evidencia "Evidência atualizada com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Evidência não encontrada"
// @Security ApiKeyAuth
// @Router /evidencias/{id} [put]
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	var patch domain.AtualizacaoEvidencia
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	atualizada, err := h.Service.Atualizar(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"dados":    atualizada,
		"mensagem": "Evidência atualizada com sucesso",
	})
}

// Excluir lida com DELETE /api/evidencias/{id}.
// @Summary Exclui uma evidência
// @Tags evidencias
// @Param id path string true "ID da evidência"
// @Success 200 "Evidência excluída com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Evidência não encontrada"
// @Security ApiKeyAuth
// @Router /evidencias/{id} [delete]
func (h *Handler) Excluir(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Excluir(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"mensagem": "Evidência excluída com sucesso",
	})
}

// ExcluirTodas lida com DELETE /api/evidencias/todas.
// @Summary Exclui todas as evidências
// @Description Operação destrutiva; exige o texto exato de confirmação no corpo.
// @Tags evidencias
// @Accept json
// @Param confirmacao body confirmacaoExclusao true "Texto de confirmação"
// @Success 200 "Evidências excluídas"
// @Failure 400 {object} domain.ErrorResponse "Confirmação inválida"
// @Security ApiKeyAuth
// @Router /evidencias/todas [delete]
func (h *Handler) ExcluirTodas(w http.ResponseWriter, r *http.Request) {
	var payload confirmacaoExclusao
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	excluidas, err := h.Service.ExcluirTodas(r.Context(), payload.Confirmacao)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, map[string]interface{}{
		"contagem": excluidas,
		"mensagem": "Todas as evidências foram excluídas",
	})
}
