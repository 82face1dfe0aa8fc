package caso

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

// CasoService define o contrato que o Handler espera da camada de Serviço.
type CasoService interface {
	Criar(ctx context.Context, caso domain.Caso) (domain.Caso, error)
	CriarComEvidencias(ctx context.Context, payload domain.CasoComEvidencias) (domain.CasoComEvidencias, error)
	Listar(ctx context.Context) ([]domain.Caso, error)
	ObterPorIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error)
	ListarPorStatus(ctx context.Context, status domain.StatusCaso) ([]domain.Caso, error)
	ListarPorResponsavelEStatus(ctx context.Context, responsavel string, status domain.StatusCaso) ([]domain.Caso, error)
	Atualizar(ctx context.Context, idCaso int64, caso domain.Caso) (domain.Caso, error)
	Excluir(ctx context.Context, idCaso int64) error
}

// Handler agrupa os métodos HTTP do recurso de casos.
type Handler struct {
	Service CasoService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CasoService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// Envelope de resposta do recurso de casos (chaves em inglês, herdadas da API original).

func (h *Handler) respondSucesso(w http.ResponseWriter, status int, data interface{}, message string) {
	body := map[string]interface{}{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("Falha ao codificar JSON de resposta de caso.", err)
	}
}

func (h *Handler) respondErro(w http.ResponseWriter, r *http.Request, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro de servidor no recurso de casos.", err)
	} else {
		h.Logger.Debug("Requisição de caso rejeitada.", map[string]interface{}{
			"path":     r.URL.Path,
			"status":   status,
			"category": category,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// idCasoFromURL extrai e valida o número sequencial do caso do path.
func idCasoFromURL(r *http.Request, param string) (int64, error) {
	idCaso, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("ID do caso deve ser um número")
	}
	return idCaso, nil
}

// Listar lida com GET /api/casos.
// @Summary Lista todos os casos
// @Description Retorna todos os casos cadastrados.
// @Tags casos
// @Produce json
// @Success 200 {array} domain.Caso "Lista de casos"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /casos [get]
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	casos, err := h.Service.Listar(r.Context())
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, casos, "")
}

// ObterPorID lida com GET /api/casos/{id}.
// @Summary Obtém um caso pelo número sequencial
// @Tags casos
// @Produce json
// @Param id path int true "Número sequencial do caso"
// @Success 200 {object} domain.Caso "Caso encontrado"
// @Failure 404 {object} domain.ErrorResponse "Caso não encontrado"
// @Security ApiKeyAuth
// @Router /casos/{id} [get]
func (h *Handler) ObterPorID(w http.ResponseWriter, r *http.Request) {
	idCaso, err := idCasoFromURL(r, "id")
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	caso, err := h.Service.ObterPorIDCaso(r.Context(), idCaso)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, caso, "")
}

// ListarPorStatus lida com GET /api/casos/status/{status}.
// @Summary Lista casos por status
// @Tags casos
// @Produce json
// @Param status path string true "Status do caso" Enums(Em andamento, Arquivado, Finalizado)
// @Success 200 {array} domain.Caso "Casos com o status informado"
// @Failure 400 {object} domain.ErrorResponse "Status inválido"
// @Security ApiKeyAuth
// @Router /casos/status/{status} [get]
func (h *Handler) ListarPorStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.StatusCaso(chi.URLParam(r, "status"))

	casos, err := h.Service.ListarPorStatus(r.Context(), status)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, casos, "")
}

// ListarPorResponsavelEStatus lida com GET /api/casos/responsavel/{id}/status/{status}.
// @Summary Lista casos de um responsável filtrados por status
// @Tags casos
// @Produce json
// @Param id path string true "ID do usuário responsável"
// @Param status path string true "Status do caso" Enums(Em andamento, Arquivado, Finalizado)
// @Success 200 {array} domain.Caso "Casos do responsável com o status informado"
// @Failure 400 {object} domain.ErrorResponse "Status inválido"
// @Security ApiKeyAuth
// @Router /casos/responsavel/{id}/status/{status} [get]
func (h *Handler) ListarPorResponsavelEStatus(w http.ResponseWriter, r *http.Request) {
	responsavel := chi.URLParam(r, "id")
	status := domain.StatusCaso(chi.URLParam(r, "status"))

	casos, err := h.Service.ListarPorResponsavelEStatus(r.Context(), responsavel, status)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, casos, "")
}

// Criar lida com POST /api/casos.
// @Summary Cria um novo caso
// @Description Cria um caso; o número sequencial é atribuído pelo sistema.
// @Tags casos
// @Accept json
// @Produce json
// @Param caso body domain.Caso true "Dados do caso"
// @Success 201 {object} domain.Caso "Caso criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /casos [post]
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var caso domain.Caso
	if err := json.NewDecoder(r.Body).Decode(&caso); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	criado, err := h.Service.Criar(r.Context(), caso)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusCreated, criado, "Caso criado com sucesso")
}

// CriarComEvidencias lida com POST /api/casos/com-evidencias.
// @Summary Cria um caso junto com suas evidências
// @Description Cria o caso e o lote de evidências como uma única unidade atômica.
// @Tags casos
// @Accept json
// @Produce json
// @Param payload body domain.CasoComEvidencias true "Caso e evidências"
// @Success 201 {object} domain.CasoComEvidencias "Caso e evidências criados"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Security ApiKeyAuth
// @Router /casos/com-evidencias [post]
func (h *Handler) CriarComEvidencias(w http.ResponseWriter, r *http.Request) {
	var payload domain.CasoComEvidencias
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	criado, err := h.Service.CriarComEvidencias(r.Context(), payload)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusCreated, criado, "Caso e evidências criados com sucesso")
}

// Atualizar lida com PUT /api/casos/{id}.
// @Summary Atualiza um caso
// @Description Substitui todos os campos de um caso existente.
// @Tags casos
// @Accept json
// @Produce json
// @Param id path int true "Número sequencial do caso"
// @Param caso body domain.Caso true "Dados do caso"
// @Success 200 {object} domain.Caso "Caso atualizado com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Caso não encontrado"
// @Security ApiKeyAuth
// @Router /casos/{id} [put]
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	idCaso, err := idCasoFromURL(r, "id")
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	var caso domain.Caso
	if err := json.NewDecoder(r.Body).Decode(&caso); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	atualizado, err := h.Service.Atualizar(r.Context(), idCaso, caso)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, atualizado, "Caso atualizado com sucesso")
}

// Excluir lida com DELETE /api/casos/{id}.
// @Summary Exclui um caso
// @Description Remove um caso; as evidências vinculadas não são removidas.
// @Tags casos
// @Param id path int true "Número sequencial do caso"
// @Success 200 "Caso excluído com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Caso não encontrado"
// @Security ApiKeyAuth
// @Router /casos/{id} [delete]
func (h *Handler) Excluir(w http.ResponseWriter, r *http.Request) {
	idCaso, err := idCasoFromURL(r, "id")
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	if err := h.Service.Excluir(r.Context(), idCaso); err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, nil, "Caso excluído com sucesso")
}
