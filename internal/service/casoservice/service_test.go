package casoservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
	"odontolegal/internal/service/casoservice"
)

// MockCasoRepository é uma implementação mock da interface CasoRepository
type MockCasoRepository struct {
	mock.Mock
}

func (m *MockCasoRepository) Create(ctx context.Context, caso domain.Caso) (domain.Caso, error) {
	args := m.Called(ctx, caso)
	return args.Get(0).(domain.Caso), args.Error(1)
}

func (m *MockCasoRepository) CriarComEvidencias(ctx context.Context, caso domain.Caso, evidencias []domain.Evidencia) (domain.Caso, []domain.Evidencia, error) {
	args := m.Called(ctx, caso, evidencias)
	return args.Get(0).(domain.Caso), args.Get(1).([]domain.Evidencia), args.Error(2)
}

func (m *MockCasoRepository) FindByIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error) {
	args := m.Called(ctx, idCaso)
	return args.Get(0).(domain.Caso), args.Error(1)
}

func (m *MockCasoRepository) FindAll(ctx context.Context) ([]domain.Caso, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Caso), args.Error(1)
}

func (m *MockCasoRepository) FindByStatus(ctx context.Context, status domain.StatusCaso) ([]domain.Caso, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Caso), args.Error(1)
}

func (m *MockCasoRepository) FindByResponsavelEStatus(ctx context.Context, responsavel string, status domain.StatusCaso) ([]domain.Caso, error) {
	args := m.Called(ctx, responsavel, status)
	return args.Get(0).([]domain.Caso), args.Error(1)
}

func (m *MockCasoRepository) Update(ctx context.Context, caso domain.Caso) (domain.Caso, error) {
	args := m.Called(ctx, caso)
	return args.Get(0).(domain.Caso), args.Error(1)
}

func (m *MockCasoRepository) Delete(ctx context.Context, idCaso int64) error {
	args := m.Called(ctx, idCaso)
	return args.Error(0)
}

func novoServico(repo *MockCasoRepository) *casoservice.Service {
	return casoservice.NewService(repo, logger.NewLogger("debug"))
}

// TestCriar_Success testa a criação de um caso válido.
func TestCriar_Success(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	entrada := domain.Caso{
		TituloCaso:      "Identificação de vítima",
		ResponsavelCaso: uuid.New().String(),
		StatusCaso:      domain.StatusEmAndamento,
	}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c domain.Caso) bool {
		return c.TituloCaso == entrada.TituloCaso && !c.DataAberturaCaso.IsZero()
	})).Return(domain.Caso{ID: uuid.New().String(), IDCaso: 1, TituloCaso: entrada.TituloCaso}, nil)

	criado, err := svc.Criar(context.Background(), entrada)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), criado.IDCaso)
	mockRepo.AssertExpectations(t)
}

// TestCriar_DefaultStatus testa que um status vazio assume "Em andamento".
func TestCriar_DefaultStatus(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	entrada := domain.Caso{
		TituloCaso:      "Exame odontolegal",
		ResponsavelCaso: uuid.New().String(),
	}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(c domain.Caso) bool {
		return c.StatusCaso == domain.StatusEmAndamento
	})).Return(domain.Caso{IDCaso: 2, StatusCaso: domain.StatusEmAndamento}, nil)

	criado, err := svc.Criar(context.Background(), entrada)

	assert.NoError(t, err)
	assert.Equal(t, domain.StatusEmAndamento, criado.StatusCaso)
	mockRepo.AssertExpectations(t)
}

// TestCriar_Fail_SemTitulo testa a rejeição de um caso sem título.
func TestCriar_Fail_SemTitulo(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	_, err := svc.Criar(context.Background(), domain.Caso{ResponsavelCaso: "abc"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Create")
}

// TestCriar_Fail_StatusInvalido testa a rejeição de um status fora do conjunto permitido.
func TestCriar_Fail_StatusInvalido(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	entrada := domain.Caso{
		TituloCaso:      "Caso",
		ResponsavelCaso: "abc",
		StatusCaso:      domain.StatusCaso("Aberto"),
	}

	_, err := svc.Criar(context.Background(), entrada)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Create")
}

// TestCriar_Fail_SexoInvalido testa a rejeição de um sexo da vítima inválido.
func TestCriar_Fail_SexoInvalido(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	entrada := domain.Caso{
		TituloCaso:      "Caso",
		ResponsavelCaso: "abc",
		SexoVitimaCaso:  "X",
	}

	_, err := svc.Criar(context.Background(), entrada)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Create")
}

// TestCriarComEvidencias_Success testa a criação atômica de caso + evidências.
func TestCriarComEvidencias_Success(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	payload := domain.CasoComEvidencias{
		Caso: domain.Caso{
			TituloCaso:      "Caso com coleta",
			ResponsavelCaso: uuid.New().String(),
		},
		Evidencias: []domain.Evidencia{
			{Endereco: domain.Endereco{Cidade: "Recife"}},
			{Endereco: domain.Endereco{Cidade: "Olinda"}},
		},
	}

	criado := domain.Caso{IDCaso: 7, TituloCaso: payload.Caso.TituloCaso}
	criadas := []domain.Evidencia{
		{ID: uuid.New().String(), IDCaso: 7},
		{ID: uuid.New().String(), IDCaso: 7},
	}

	mockRepo.On("CriarComEvidencias", mock.Anything, mock.Anything, payload.Evidencias).
		Return(criado, criadas, nil)

	resultado, err := svc.CriarComEvidencias(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), resultado.Caso.IDCaso)
	assert.Len(t, resultado.Evidencias, 2)
	for _, ev := range resultado.Evidencias {
		assert.Equal(t, int64(7), ev.IDCaso)
	}
	mockRepo.AssertExpectations(t)
}

// TestCriarComEvidencias_Fail_CasoInvalido testa que nada é persistido quando o caso é inválido.
func TestCriarComEvidencias_Fail_CasoInvalido(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	payload := domain.CasoComEvidencias{
		Caso:       domain.Caso{TituloCaso: "Sem responsável"},
		Evidencias: []domain.Evidencia{{}},
	}

	_, err := svc.CriarComEvidencias(context.Background(), payload)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "CriarComEvidencias")
}

// TestObterPorIDCaso_Success testa a busca de um caso pelo número sequencial.
func TestObterPorIDCaso_Success(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	esperado := domain.Caso{ID: uuid.New().String(), IDCaso: 3, TituloCaso: "Caso 3"}
	mockRepo.On("FindByIDCaso", mock.Anything, int64(3)).Return(esperado, nil)

	caso, err := svc.ObterPorIDCaso(context.Background(), 3)

	assert.NoError(t, err)
	assert.Equal(t, esperado, caso)
	mockRepo.AssertExpectations(t)
}

// TestObterPorIDCaso_Fail_IDInvalido testa a rejeição de números não positivos.
func TestObterPorIDCaso_Fail_IDInvalido(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	_, err := svc.ObterPorIDCaso(context.Background(), 0)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByIDCaso")
}

// TestObterPorIDCaso_Fail_NaoEncontrado testa a propagação do NotFound do repositório.
func TestObterPorIDCaso_Fail_NaoEncontrado(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	mockRepo.On("FindByIDCaso", mock.Anything, int64(99)).
		Return(domain.Caso{}, apperror.NewNotFoundError("Caso não encontrado"))

	_, err := svc.ObterPorIDCaso(context.Background(), 99)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestListarPorStatus_Fail_StatusInvalido testa a rejeição de um filtro de status inválido.
func TestListarPorStatus_Fail_StatusInvalido(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	_, err := svc.ListarPorStatus(context.Background(), domain.StatusCaso("Pendente"))

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByStatus")
}

// TestListarPorResponsavelEStatus_Success testa o filtro combinado.
func TestListarPorResponsavelEStatus_Success(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	responsavel := uuid.New().String()
	esperados := []domain.Caso{{IDCaso: 1, ResponsavelCaso: responsavel, StatusCaso: domain.StatusFinalizado}}

	mockRepo.On("FindByResponsavelEStatus", mock.Anything, responsavel, domain.StatusFinalizado).
		Return(esperados, nil)

	casos, err := svc.ListarPorResponsavelEStatus(context.Background(), responsavel, domain.StatusFinalizado)

	assert.NoError(t, err)
	assert.Equal(t, esperados, casos)
	mockRepo.AssertExpectations(t)
}

// TestAtualizar_Success testa que o número sequencial do path prevalece sobre o do corpo.
func TestAtualizar_Success(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	entrada := domain.Caso{
		IDCaso:          999, // ignorado: o path manda
		TituloCaso:      "Título novo",
		ResponsavelCaso: "abc",
		StatusCaso:      domain.StatusArquivado,
	}

	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(c domain.Caso) bool {
		return c.IDCaso == 5
	})).Return(domain.Caso{IDCaso: 5, TituloCaso: "Título novo"}, nil)

	atualizado, err := svc.Atualizar(context.Background(), 5, entrada)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), atualizado.IDCaso)
	mockRepo.AssertExpectations(t)
}

// TestExcluir_Success testa a exclusão de um caso.
func TestExcluir_Success(t *testing.T) {
	mockRepo := new(MockCasoRepository)
	svc := novoServico(mockRepo)

	mockRepo.On("Delete", mock.Anything, int64(4)).Return(nil)

	err := svc.Excluir(context.Background(), 4)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
