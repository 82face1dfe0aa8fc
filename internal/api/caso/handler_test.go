package caso_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"odontolegal/internal/api/caso"
	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

// MockCasoService é uma implementação mock da interface CasoService
type MockCasoService struct {
	mock.Mock
}

func (m *MockCasoService) Criar(ctx context.Context, c domain.Caso) (domain.Caso, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Caso), args.Error(1)
}

func (m *MockCasoService) CriarComEvidencias(ctx context.Context, payload domain.CasoComEvidencias) (domain.CasoComEvidencias, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(domain.CasoComEvidencias), args.Error(1)
}

func (m *MockCasoService) Listar(ctx context.Context) ([]domain.Caso, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Caso), args.Error(1)
}

func (m *MockCasoService) ObterPorIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error) {
	args := m.Called(ctx, idCaso)
	return args.Get(0).(domain.Caso), args.Error(1)
}

func (m *MockCasoService) ListarPorStatus(ctx context.Context, status domain.StatusCaso) ([]domain.Caso, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Caso), args.Error(1)
}

func (m *MockCasoService) ListarPorResponsavelEStatus(ctx context.Context, responsavel string, status domain.StatusCaso) ([]domain.Caso, error) {
	args := m.Called(ctx, responsavel, status)
	return args.Get(0).([]domain.Caso), args.Error(1)
}

func (m *MockCasoService) Atualizar(ctx context.Context, idCaso int64, c domain.Caso) (domain.Caso, error) {
	args := m.Called(ctx, idCaso, c)
	return args.Get(0).(domain.Caso), args.Error(1)
}

func (m *MockCasoService) Excluir(ctx context.Context, idCaso int64) error {
	args := m.Called(ctx, idCaso)
	return args.Error(0)
}

func novoRouter(svc *MockCasoService) http.Handler {
	h := caso.NewHandler(svc, logger.NewLogger("debug"))
	r := chi.NewRouter()
	r.Get("/api/casos/{id}", h.ObterPorID)
	r.Post("/api/casos", h.Criar)
	r.Delete("/api/casos/{id}", h.Excluir)
	return r
}

// TestObterPorID_Success testa o envelope de sucesso com os dados do caso.
func TestObterPorID_Success(t *testing.T) {
	mockSvc := new(MockCasoService)
	mockSvc.On("ObterPorIDCaso", mock.Anything, int64(7)).
		Return(domain.Caso{IDCaso: 7, TituloCaso: "Caso 7"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/casos/7", nil)
	rec := httptest.NewRecorder()

	novoRouter(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	dados, ok := body["data"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(7), dados["id_caso"])
	mockSvc.AssertExpectations(t)
}

// TestObterPorID_Fail_NaoEncontrado testa o envelope de erro com status 404.
func TestObterPorID_Fail_NaoEncontrado(t *testing.T) {
	mockSvc := new(MockCasoService)
	mockSvc.On("ObterPorIDCaso", mock.Anything, int64(99)).
		Return(domain.Caso{}, apperror.NewNotFoundError("Caso não encontrado"))

	req := httptest.NewRequest(http.MethodGet, "/api/casos/99", nil)
	rec := httptest.NewRecorder()

	novoRouter(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Caso não encontrado", body["error"])
	mockSvc.AssertExpectations(t)
}

// TestObterPorID_Fail_IDNaoNumerico testa a rejeição de um path param não numérico.
func TestObterPorID_Fail_IDNaoNumerico(t *testing.T) {
	mockSvc := new(MockCasoService)

	req := httptest.NewRequest(http.MethodGet, "/api/casos/abc", nil)
	rec := httptest.NewRecorder()

	novoRouter(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "ObterPorIDCaso")
}

// TestCriar_Success testa a criação com status 201 e mensagem de sucesso.
func TestCriar_Success(t *testing.T) {
	mockSvc := new(MockCasoService)
	mockSvc.On("Criar", mock.Anything, mock.Anything).
		Return(domain.Caso{IDCaso: 1, TituloCaso: "Novo caso"}, nil)

	payload := `{"titulo_caso":"Novo caso","responsavel_caso":"abc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/casos", strings.NewReader(payload))
	rec := httptest.NewRecorder()

	novoRouter(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Caso criado com sucesso", body["message"])
	mockSvc.AssertExpectations(t)
}

// TestCriar_Fail_JSONInvalido testa a rejeição de um corpo que não é JSON.
func TestCriar_Fail_JSONInvalido(t *testing.T) {
	mockSvc := new(MockCasoService)

	req := httptest.NewRequest(http.MethodPost, "/api/casos", strings.NewReader("{nao-json"))
	rec := httptest.NewRecorder()

	novoRouter(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "Criar")
}

// TestExcluir_Success testa a exclusão com mensagem de sucesso.
func TestExcluir_Success(t *testing.T) {
	mockSvc := new(MockCasoService)
	mockSvc.On("Excluir", mock.Anything, int64(4)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/casos/4", nil)
	rec := httptest.NewRecorder()

	novoRouter(mockSvc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Caso excluído com sucesso", body["message"])
	mockSvc.AssertExpectations(t)
}
