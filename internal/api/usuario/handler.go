package usuario

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

// UsuarioService define o contrato que o Handler espera da camada de Serviço.
type UsuarioService interface {
	Cadastrar(ctx context.Context, cadastro domain.CadastroUsuario) (domain.Usuario, error)
	Login(ctx context.Context, email, senha string) (domain.SessaoUsuario, error)
	Listar(ctx context.Context) ([]domain.Usuario, error)
	ObterPorID(ctx context.Context, id string) (domain.Usuario, error)
	ListarPorTipoPerfil(ctx context.Context, tipo domain.PerfilUsuario) ([]domain.Usuario, error)
	Atualizar(ctx context.Context, id string, atualizacao domain.AtualizacaoUsuario) (domain.Usuario, error)
	AtualizarFoto(ctx context.Context, id string, foto string) (domain.Usuario, error)
	Excluir(ctx context.Context, id string) error
}

// Handler agrupa os métodos HTTP do recurso de usuários.
type Handler struct {
	Service UsuarioService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UsuarioService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

type credenciaisLogin struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type fotoPayload struct {
	FotoPerfilUsuario string `json:"foto_perfil_usuario"`
}

func (h *Handler) respondSucesso(w http.ResponseWriter, status int, dados interface{}, mensagem string) {
	body := map[string]interface{}{"sucesso": true}
	if dados != nil {
		body["dados"] = dados
	}
	if mensagem != "" {
		body["mensagem"] = mensagem
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("Falha ao codificar JSON de resposta de usuário.", err)
	}
}

func (h *Handler) respondErro(w http.ResponseWriter, r *http.Request, err error) {
	status, category, mensagem := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error("Erro de servidor no recurso de usuários.", err)
	} else {
		h.Logger.Debug("Requisição de usuário rejeitada.", map[string]interface{}{
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

// Cadastrar lida com POST /api/usuarios.
// @Summary Cadastra um novo usuário
// @Description Cria um usuário com senha criptografada; o email deve ser único.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param usuario body domain.CadastroUsuario true "Dados do usuário"
// @Success 201 {object} domain.Usuario "Usuário cadastrado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Dados inválidos"
// @Failure 409 {object} domain.ErrorResponse "Email já cadastrado"
// @Router /usuarios [post]
func (h *Handler) Cadastrar(w http.ResponseWriter, r *http.Request) {
	var cadastro domain.CadastroUsuario
	if err := json.NewDecoder(r.Body).Decode(&cadastro); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	criado, err := h.Service.Cadastrar(r.Context(), cadastro)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusCreated, criado, "Usuário cadastrado com sucesso")
}

// Login lida com POST /api/auth/login.
// @Summary Autentica um usuário
// @Description Valida as credenciais e retorna um token JWT com os dados da sessão.
// @Tags auth
// @Accept json
// @Produce json
// @Param credenciais body credenciaisLogin true "Email e senha"
// @Success 200 {object} domain.SessaoUsuario "Sessão autenticada"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var cred credenciaisLogin
	if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	sessao, err := h.Service.Login(r.Context(), cred.Email, cred.Senha)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, sessao, "Login realizado com sucesso")
}

// Listar lida com GET /api/usuarios.
// @Summary Lista todos os usuários
// @Tags usuarios
// @Produce json
// @Success 200 {array} domain.Usuario "Lista de usuários"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /usuarios [get]
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.Service.Listar(r.Context())
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, usuarios, "")
}

// ObterPorID lida com GET /api/usuarios/{id}.
// @Summary Obtém um usuário pelo ID
// @Tags usuarios
// @Produce json
// @Param id path string true "ID do usuário"
// @Success 200 {object} domain.Usuario "Usuário encontrado"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Security ApiKeyAuth
// @Router /usuarios/{id} [get]
func (h *Handler) ObterPorID(w http.ResponseWriter, r *http.Request) {
	usuario, err := h.Service.ObterPorID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, usuario, "")
}

// ListarPorTipoPerfil lida com GET /api/usuarios/tipo/{tipo_perfil}.
// @Summary Lista usuários por tipo de perfil
// @Tags usuarios
// @Produce json
// @Param tipo_perfil path string true "Tipo de perfil" Enums(Admin, Perito, Assistente)
// @Success 200 {array} domain.Usuario "Usuários com o perfil informado"
// @Failure 404 {object} domain.ErrorResponse "Nenhum usuário encontrado"
// @Security ApiKeyAuth
// @Router /usuarios/tipo/{tipo_perfil} [get]
func (h *Handler) ListarPorTipoPerfil(w http.ResponseWriter, r *http.Request) {
	tipo := domain.PerfilUsuario(chi.URLParam(r, "tipo_perfil"))

	usuarios, err := h.Service.ListarPorTipoPerfil(r.Context(), tipo)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, usuarios, "")
}

// Atualizar lida com PUT /api/usuarios/{id}.
// @Summary Atualiza um usuário
// @Description Altera somente os campos enviados no payload; a senha só é re-hasheada se uma nova for enviada.
// @Tags usuarios
// @Accept json
// @Produce json
// @Param id path string true "ID do usuário"
// @Param usuario body domain.AtualizacaoUsuario true "Dados do usuário"
// @Success 200 {object} domain.Usuario "Usuário atualizado com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Security ApiKeyAuth
// @Router /usuarios/{id} [put]
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	var atualizacao domain.AtualizacaoUsuario
	if err := json.NewDecoder(r.Body).Decode(&atualizacao); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	atualizado, err := h.Service.Atualizar(r.Context(), chi.URLParam(r, "id"), atualizacao)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, atualizado, "Usuário atualizado com sucesso")
}

// AtualizarFoto lida com PATCH /api/usuarios/{id}/foto.
// @Summary Atualiza a foto de perfil de um usuário
// @Description Recebe a imagem como data URI base64 (prefixo data:image).
// @Tags usuarios
// @Accept json
// @Produce json
// @Param id path string true "ID do usuário"
// @Param foto body fotoPayload true "Foto de perfil em base64"
// @Success 200 {object} domain.Usuario "Foto atualizada com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Formato de imagem inválido"
// @Security ApiKeyAuth
// @Router /usuarios/{id}/foto [patch]
func (h *Handler) AtualizarFoto(w http.ResponseWriter, r *http.Request) {
	var payload fotoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErro(w, r, apperror.NewValidationError("Payload JSON inválido"))
		return
	}

	atualizado, err := h.Service.AtualizarFoto(r.Context(), chi.URLParam(r, "id"), payload.FotoPerfilUsuario)
	if err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, atualizado, "Foto de perfil atualizada com sucesso")
}

// Excluir lida com DELETE /api/usuarios/{id}.
// @Summary Exclui um usuário
// @Tags usuarios
// @Param id path string true "ID do usuário"
// @Success 200 "Usuário excluído com sucesso"
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Security ApiKeyAuth
// @Router /usuarios/{id} [delete]
func (h *Handler) Excluir(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Excluir(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErro(w, r, err)
		return
	}

	h.respondSucesso(w, http.StatusOK, nil, "Usuário excluído com sucesso")
}
