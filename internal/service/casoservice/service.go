package casoservice

import (
	"context"
	"time"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

// CasoRepository define o contrato de persistência que este serviço espera.
type CasoRepository interface {
	Create(ctx context.Context, caso domain.Caso) (domain.Caso, error)
	CriarComEvidencias(ctx context.Context, caso domain.Caso, evidencias []domain.Evidencia) (domain.Caso, []domain.Evidencia, error)
	FindByIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error)
	FindAll(ctx context.Context) ([]domain.Caso, error)
	FindByStatus(ctx context.Context, status domain.StatusCaso) ([]domain.Caso, error)
	FindByResponsavelEStatus(ctx context.Context, responsavel string, status domain.StatusCaso) ([]domain.Caso, error)
	Update(ctx context.Context, caso domain.Caso) (domain.Caso, error)
	Delete(ctx context.Context, idCaso int64) error
}

// Service implementa as regras de negócio da entidade Caso.
type Service struct {
	repo   CasoRepository
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de casos.
func NewService(repo CasoRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// validar aplica as regras comuns de criação e atualização: título e
// responsável obrigatórios, status e sexo da vítima restritos aos conjuntos
// permitidos. Status vazio assume "Em andamento".
func validar(caso *domain.Caso) error {
	if caso.TituloCaso == "" || caso.ResponsavelCaso == "" {
		return apperror.NewValidationError("Por favor, forneça pelo menos título e responsável pelo caso")
	}
	if caso.StatusCaso == "" {
		caso.StatusCaso = domain.StatusEmAndamento
	}
	if !caso.StatusCaso.Valido() {
		return apperror.NewValidationError("Status inválido. Use: Em andamento, Arquivado ou Finalizado")
	}
	if !domain.SexoVitimaValido(caso.SexoVitimaCaso) {
		return apperror.NewValidationError("Sexo inválido. Use: M para masculino ou F para feminino")
	}
	return nil
}

// Criar cria um novo caso com status e data de abertura padronizados.
func (s *Service) Criar(ctx context.Context, caso domain.Caso) (domain.Caso, error) {
	if err := validar(&caso); err != nil {
		return domain.Caso{}, err
	}
	if caso.DataAberturaCaso.IsZero() {
		caso.DataAberturaCaso = time.Now().UTC()
	}

	criado, err := s.repo.Create(ctx, caso)
	if err != nil {
		return domain.Caso{}, err
	}

	s.logger.Info("Caso criado.", map[string]interface{}{"id_caso": criado.IDCaso})
	return criado, nil
}

// CriarComEvidencias cria um caso e um lote opcional de evidências como uma
// única unidade atômica. A validação acontece antes de qualquer escrita;
// qualquer falha de persistência desfaz a transação inteira.
func (s *Service) CriarComEvidencias(ctx context.Context, payload domain.CasoComEvidencias) (domain.CasoComEvidencias, error) {
	caso := payload.Caso
	if err := validar(&caso); err != nil {
		return domain.CasoComEvidencias{}, err
	}
	if caso.DataAberturaCaso.IsZero() {
		caso.DataAberturaCaso = time.Now().UTC()
	}

	criado, evidencias, err := s.repo.CriarComEvidencias(ctx, caso, payload.Evidencias)
	if err != nil {
		return domain.CasoComEvidencias{}, err
	}

	s.logger.Info("Caso criado com evidências.", map[string]interface{}{
		"id_caso":    criado.IDCaso,
		"evidencias": len(evidencias),
	})
	return domain.CasoComEvidencias{Caso: criado, Evidencias: evidencias}, nil
}

// Listar retorna todos os casos.
func (s *Service) Listar(ctx context.Context) ([]domain.Caso, error) {
	return s.repo.FindAll(ctx)
}

// ObterPorIDCaso retorna um caso pelo número sequencial.
func (s *Service) ObterPorIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error) {
	if idCaso <= 0 {
		return domain.Caso{}, apperror.NewValidationError("ID do caso deve ser um número positivo")
	}
	return s.repo.FindByIDCaso(ctx, idCaso)
}

// ListarPorStatus retorna os casos com o status informado.
func (s *Service) ListarPorStatus(ctx context.Context, status domain.StatusCaso) ([]domain.Caso, error) {
	if !status.Valido() {
		return nil, apperror.NewValidationError("Status inválido. Use: Em andamento, Arquivado ou Finalizado")
	}
	return s.repo.FindByStatus(ctx, status)
}

// ListarPorResponsavelEStatus retorna os casos de um responsável com o status informado.
func (s *Service) ListarPorResponsavelEStatus(ctx context.Context, responsavel string, status domain.StatusCaso) ([]domain.Caso, error) {
	if responsavel == "" {
		return nil, apperror.NewValidationError("ID do responsável é obrigatório")
	}
	if !status.Valido() {
		return nil, apperror.NewValidationError("Status inválido. Use: Em andamento, Arquivado ou Finalizado")
	}
	return s.repo.FindByResponsavelEStatus(ctx, responsavel, status)
}

// Atualizar substitui todos os campos de um caso, localizado pelo número sequencial.
func (s *Service) Atualizar(ctx context.Context, idCaso int64, caso domain.Caso) (domain.Caso, error) {
	if idCaso <= 0 {
		return domain.Caso{}, apperror.NewValidationError("ID do caso deve ser um número positivo")
	}
	if err := validar(&caso); err != nil {
		return domain.Caso{}, err
	}

	caso.IDCaso = idCaso
	return s.repo.Update(ctx, caso)
}

// Excluir remove um caso pelo número sequencial.
// As evidências do caso permanecem intactas.
func (s *Service) Excluir(ctx context.Context, idCaso int64) error {
	if idCaso <= 0 {
		return apperror.NewValidationError("ID do caso deve ser um número positivo")
	}
	return s.repo.Delete(ctx, idCaso)
}
