package evidenciaservice

import (
	"context"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

// EvidenciaRepository define o contrato de persistência que este serviço espera.
type EvidenciaRepository interface {
	Create(ctx context.Context, ev domain.Evidencia) (domain.Evidencia, error)
	CreateMany(ctx context.Context, evidencias []domain.Evidencia) ([]domain.Evidencia, error)
	FindByID(ctx context.Context, id string) (domain.Evidencia, error)
	FindAll(ctx context.Context) ([]domain.Evidencia, error)
	FindByCaso(ctx context.Context, idCaso int64) ([]domain.Evidencia, error)
	Update(ctx context.Context, ev domain.Evidencia) (domain.Evidencia, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// CasoFinder é o contrato mínimo sobre casos de que este serviço precisa:
// verificar que o caso referenciado por uma evidência existe.
type CasoFinder interface {
	FindByIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error)
}

// Service implementa as regras de negócio da entidade Evidencia.
type Service struct {
	repo   EvidenciaRepository
	casos  CasoFinder
	logger logger.Logger
}

// NewService cria uma nova instância do serviço de evidências.
func NewService(repo EvidenciaRepository, casos CasoFinder, log logger.Logger) *Service {
	return &Service{repo: repo, casos: casos, logger: log}
}

// verificarCaso garante que o caso referenciado existe antes de qualquer
// inserção; é a integridade referencial aplicada na camada de aplicação.
func (s *Service) verificarCaso(ctx context.Context, idCaso int64) error {
	if idCaso <= 0 {
		return apperror.NewValidationError("ID do caso é obrigatório")
	}
	if _, err := s.casos.FindByIDCaso(ctx, idCaso); err != nil {
		return err
	}
	return nil
}

// Criar cria uma nova evidência vinculada a um caso existente.
func (s *Service) Criar(ctx context.Context, ev domain.Evidencia) (domain.Evidencia, error) {
	if err := s.verificarCaso(ctx, ev.IDCaso); err != nil {
		return domain.Evidencia{}, err
	}

	criada, err := s.repo.Create(ctx, ev)
	if err != nil {
		return domain.Evidencia{}, err
	}

	s.logger.Info("Evidência criada.", map[string]interface{}{"id": criada.ID, "id_caso": criada.IDCaso})
	return criada, nil
}

// CriarMultiplas cria um lote de evidências para um único caso existente.
// O id_caso compartilhado é injetado em cada item; o lote persiste em uma
// única transação.
func (s *Service) CriarMultiplas(ctx context.Context, idCaso int64, evidencias []domain.Evidencia) ([]domain.Evidencia, error) {
	if err := s.verificarCaso(ctx, idCaso); err != nil {
		return nil, err
	}
	if len(evidencias) == 0 {
		return nil, apperror.NewValidationError("Nenhuma evidência enviada")
	}

	for i := range evidencias {
		evidencias[i].IDCaso = idCaso
	}

	criadas, err := s.repo.CreateMany(ctx, evidencias)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lote de evidências criado.", map[string]interface{}{"id_caso": idCaso, "quantidade": len(criadas)})
	return criadas, nil
}

// Listar retorna todas as evidências.
func (s *Service) Listar(ctx context.Context) ([]domain.Evidencia, error) {
	return s.repo.FindAll(ctx)
}

// ListarAgrupadasPorCaso retorna todas as evidências agrupadas pelo caso
// proprietário, na ordem dos números sequenciais.
func (s *Service) ListarAgrupadasPorCaso(ctx context.Context) ([]domain.EvidenciasDoCaso, error) {
	evidencias, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// FindAll retorna ordenado por id_caso; basta particionar em sequência.
	var grupos []domain.EvidenciasDoCaso
	for _, ev := range evidencias {
		if len(grupos) == 0 || grupos[len(grupos)-1].IDCaso != ev.IDCaso {
			grupos = append(grupos, domain.EvidenciasDoCaso{IDCaso: ev.IDCaso})
		}
		g := &grupos[len(grupos)-1]
		g.Evidencias = append(g.Evidencias, ev)
		g.Contagem = len(g.Evidencias)
	}

	return grupos, nil
}

// ObterPorID retorna uma evidência pelo ID.
func (s *Service) ObterPorID(ctx context.Context, id string) (domain.Evidencia, error) {
	if id == "" {
		return domain.Evidencia{}, apperror.NewValidationError("ID da evidência é obrigatório")
	}
	return s.repo.FindByID(ctx, id)
}

// ListarPorCaso retorna as evidências de um caso.
// Caso sem evidências vale 404, como no comportamento original.
func (s *Service) ListarPorCaso(ctx context.Context, idCaso int64) ([]domain.Evidencia, error) {
	if idCaso <= 0 {
		return nil, apperror.NewValidationError("ID do caso deve ser um número positivo")
	}

	evidencias, err := s.repo.FindByCaso(ctx, idCaso)
	if err != nil {
		return nil, err
	}
	if len(evidencias) == 0 {
		return nil, apperror.NewNotFoundError("Nenhuma evidência encontrada para este caso")
	}
	return evidencias, nil
}

// Atualizar aplica um patch parcial a uma evidência: somente os campos
// presentes no payload são alterados, os omitidos preservam o valor
// armazenado. O registro mesclado é persistido por inteiro.
func (s *Service) Atualizar(ctx context.Context, id string, patch domain.AtualizacaoEvidencia) (domain.Evidencia, error) {
	if id == "" {
		return domain.Evidencia{}, apperror.NewValidationError("ID da evidência é obrigatório")
	}

	atual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Evidencia{}, err
	}

	aplicarPatch(&atual, patch)
	return s.repo.Update(ctx, atual)
}

func aplicarPatch(ev *domain.Evidencia, patch domain.AtualizacaoEvidencia) {
	if patch.Endereco != nil {
		end := patch.Endereco
		if end.Rua != nil {
			ev.Endereco.Rua = *end.Rua
		}
		if end.Bairro != nil {
			ev.Endereco.Bairro = *end.Bairro
		}
		if end.CEP != nil {
			ev.Endereco.CEP = *end.CEP
		}
		if end.Numero != nil {
			ev.Endereco.Numero = *end.Numero
		}
		if end.Estado != nil {
			ev.Endereco.Estado = *end.Estado
		}
		if end.Cidade != nil {
			ev.Endereco.Cidade = *end.Cidade
		}
	}
	if patch.RadiografiaEvidencia != nil {
		ev.RadiografiaEvidencia = *patch.RadiografiaEvidencia
	}
	if patch.RadiografiaObservacaoEvidencia != nil {
		ev.RadiografiaObservacaoEvidencia = *patch.RadiografiaObservacaoEvidencia
	}
	if patch.OdontogramaEvidencia != nil {
		ev.OdontogramaEvidencia = *patch.OdontogramaEvidencia
	}
	if patch.OdontogramaObservacaoEvidencia != nil {
		ev.OdontogramaObservacaoEvidencia = *patch.OdontogramaObservacaoEvidencia
	}
	if patch.DocumentosEvidencia != nil {
		ev.DocumentosEvidencia = *patch.DocumentosEvidencia
	}
	if patch.DocumentosObservacaoEvidencia != nil {
		ev.DocumentosObservacaoEvidencia = *patch.DocumentosObservacaoEvidencia
	}
}

// Excluir remove uma evidência pelo ID.
func (s *Service) Excluir(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("ID da evidência é obrigatório")
	}
	return s.repo.Delete(ctx, id)
}

// ExcluirTodas remove todas as evidências. Operação destrutiva: exige o
// literal exato de confirmação; qualquer outro valor aborta sem apagar nada.
func (s *Service) ExcluirTodas(ctx context.Context, confirmacao string) (int64, error) {
	if confirmacao != domain.ConfirmacaoExclusao {
		return 0, apperror.NewValidationError("Confirmação inválida. Envie o texto exato para confirmar a exclusão de todas as evidências")
	}

	removidas, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Warn("Exclusão em massa de evidências executada.", map[string]interface{}{"removidas": removidas})
	return removidas, nil
}
