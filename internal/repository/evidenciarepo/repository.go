package evidenciarepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

const evidenciaColumns = `id, id_caso, rua, bairro, cep, numero, estado, cidade,
       data_criacao_evidencia,
       radiografia_evidencia, radiografia_observacao_evidencia,
       odontograma_evidencia, odontograma_observacao_evidencia,
       documentos_evidencia, documentos_observacao_evidencia`

const evidenciaInsertSQL = `
        INSERT INTO evidencias (id, id_caso, rua, bairro, cep, numero, estado, cidade,
                                data_criacao_evidencia,
                                radiografia_evidencia, radiografia_observacao_evidencia,
                                odontograma_evidencia, odontograma_observacao_evidencia,
                                documentos_evidencia, documentos_observacao_evidencia)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING ` + evidenciaColumns

// EvidenciaRepository implementa o acesso a dados da entidade Evidencia.
type EvidenciaRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEvidenciaRepository cria e retorna uma nova instância do Repositório de Evidências.
func NewEvidenciaRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *EvidenciaRepository {
	return &EvidenciaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// InsertTx insere uma evidência dentro de uma transação já aberta, atribuindo
// ID e data de criação quando ausentes, e retorna a linha persistida. É o
// único ponto com o INSERT de evidências em transação; a criação composta de
// caso com evidências também passa por aqui.
func InsertTx(ctx context.Context, tx *sql.Tx, ev domain.Evidencia) (domain.Evidencia, error) {
	ev.ID = uuid.NewString()
	if ev.DataCriacaoEvidencia.IsZero() {
		ev.DataCriacaoEvidencia = time.Now().UTC()
	}
	return scanEvidencia(tx.QueryRowContext(ctx, evidenciaInsertSQL, insertArgs(ev)...))
}

// Create insere uma nova evidência.
// A existência do caso referenciado já foi verificada na camada de serviço.
func (r *EvidenciaRepository) Create(ctx context.Context, ev domain.Evidencia) (domain.Evidencia, error) {
	r.logger.Debug("Iniciando Create de evidência no repositório.", map[string]interface{}{"id_caso": ev.IDCaso})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	ev.ID = uuid.NewString()
	if ev.DataCriacaoEvidencia.IsZero() {
		ev.DataCriacaoEvidencia = time.Now().UTC()
	}

	criada, err := scanEvidencia(r.DB.QueryRowContext(ctxTimeout, evidenciaInsertSQL, insertArgs(ev)...))
	if err != nil {
		r.logger.Error("Falha ao inserir evidência no DB.", err)
		return domain.Evidencia{}, apperror.NewDBError("Falha ao criar evidência", err)
	}

	r.logger.Info("Evidência criada com sucesso.", map[string]interface{}{"id": criada.ID, "id_caso": criada.IDCaso})
	return criada, nil
}

// CreateMany insere um lote de evidências em uma única transação.
// Falhou uma, não persiste nenhuma.
func (r *EvidenciaRepository) CreateMany(ctx context.Context, evidencias []domain.Evidencia) ([]domain.Evidencia, error) {
	r.logger.Debug("Iniciando CreateMany de evidências no repositório.", map[string]interface{}{"quantidade": len(evidencias)})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de evidências.", err)
		return nil, apperror.NewDBError("Falha ao iniciar transação", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	criadas := make([]domain.Evidencia, 0, len(evidencias))
	for i := range evidencias {
		var criada domain.Evidencia
		criada, err = InsertTx(ctxTimeout, tx, evidencias[i])
		if err != nil {
			r.logger.Error("Falha ao inserir evidência do lote.", err)
			return nil, apperror.NewDBError("Falha ao criar evidências", err)
		}
		criadas = append(criadas, criada)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de evidências.", err)
		return nil, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Lote de evidências criado com sucesso.", map[string]interface{}{"quantidade": len(criadas)})
	return criadas, nil
}

// FindByID busca uma evidência pelo ID.
func (r *EvidenciaRepository) FindByID(ctx context.Context, id string) (domain.Evidencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + evidenciaColumns + ` FROM evidencias WHERE id = $1`

	ev, err := scanEvidencia(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Evidencia{}, apperror.NewNotFoundError("Evidência não encontrada")
		}
		r.logger.Error("Falha ao buscar evidência no DB.", err)
		return domain.Evidencia{}, apperror.NewDBError("Falha ao buscar evidência", err)
	}

	return ev, nil
}

// FindAll busca todas as evidências.
func (r *EvidenciaRepository) FindAll(ctx context.Context) ([]domain.Evidencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + evidenciaColumns + ` FROM evidencias ORDER BY id_caso, data_criacao_evidencia`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de evidências.", err)
		return nil, apperror.NewDBError("Falha ao buscar evidências", err)
	}
	defer rows.Close()

	return collectEvidencias(rows, r.logger)
}

// FindByCaso busca todas as evidências de um caso.
func (r *EvidenciaRepository) FindByCaso(ctx context.Context, idCaso int64) ([]domain.Evidencia, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + evidenciaColumns + ` FROM evidencias WHERE id_caso = $1 ORDER BY data_criacao_evidencia`

	rows, err := r.DB.QueryContext(ctxTimeout, query, idCaso)
	if err != nil {
		r.logger.Error("Falha ao buscar evidências por caso.", err)
		return nil, apperror.NewDBError("Falha ao buscar evidências do caso", err)
	}
	defer rows.Close()

	return collectEvidencias(rows, r.logger)
}

// Update persiste os campos editáveis de uma evidência (endereço, conteúdos
// e observações), já mesclados com o registro atual pela camada de serviço.
// O vínculo com o caso não muda.
func (r *EvidenciaRepository) Update(ctx context.Context, ev domain.Evidencia) (domain.Evidencia, error) {
	r.logger.Debug("Iniciando Update de evidência no repositório.", map[string]interface{}{"id": ev.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE evidencias
        SET rua = $1, bairro = $2, cep = $3, numero = $4, estado = $5, cidade = $6,
            radiografia_evidencia = $7, radiografia_observacao_evidencia = $8,
            odontograma_evidencia = $9, odontograma_observacao_evidencia = $10,
            documentos_evidencia = $11, documentos_observacao_evidencia = $12
        WHERE id = $13
        RETURNING ` + evidenciaColumns

	atualizada, err := scanEvidencia(r.DB.QueryRowContext(ctxTimeout, query,
		ev.Endereco.Rua,
		ev.Endereco.Bairro,
		ev.Endereco.CEP,
		ev.Endereco.Numero,
		ev.Endereco.Estado,
		ev.Endereco.Cidade,
		ev.RadiografiaEvidencia,
		ev.RadiografiaObservacaoEvidencia,
		ev.OdontogramaEvidencia,
		ev.OdontogramaObservacaoEvidencia,
		ev.DocumentosEvidencia,
		ev.DocumentosObservacaoEvidencia,
		ev.ID,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Evidencia{}, apperror.NewNotFoundError("Evidência não encontrada")
		}
		r.logger.Error("Falha ao atualizar evidência no DB.", err)
		return domain.Evidencia{}, apperror.NewDBError("Falha ao atualizar evidência", err)
	}

	r.logger.Info("Evidência atualizada com sucesso.", map[string]interface{}{"id": atualizada.ID})
	return atualizada, nil
}

// Delete remove uma evidência pelo ID.
func (r *EvidenciaRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM evidencias WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar evidência do DB.", err)
		return apperror.NewDBError("Falha ao deletar evidência", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete de evidência.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if rowsAffected == 0 {
		return apperror.NewNotFoundError("Evidência não encontrada")
	}

	r.logger.Info("Evidência deletada com sucesso.", map[string]interface{}{"id": id})
	return nil
}

// DeleteAll remove todas as evidências e retorna a quantidade removida.
// A confirmação do chamador já foi validada na camada de serviço.
func (r *EvidenciaRepository) DeleteAll(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM evidencias`)
	if err != nil {
		r.logger.Error("Falha ao deletar todas as evidências.", err)
		return 0, apperror.NewDBError("Falha ao deletar evidências", err)
	}

	removidas, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após DeleteAll.", err)
		return 0, apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	r.logger.Warn("Todas as evidências foram removidas.", map[string]interface{}{"removidas": removidas})
	return removidas, nil
}

// --- Helpers de mapeamento ---

type scanner interface {
	Scan(dest ...interface{}) error
}

func insertArgs(ev domain.Evidencia) []interface{} {
	return []interface{}{
		ev.ID,
		ev.IDCaso,
		ev.Endereco.Rua,
		ev.Endereco.Bairro,
		ev.Endereco.CEP,
		ev.Endereco.Numero,
		ev.Endereco.Estado,
		ev.Endereco.Cidade,
		ev.DataCriacaoEvidencia,
		ev.RadiografiaEvidencia,
		ev.RadiografiaObservacaoEvidencia,
		ev.OdontogramaEvidencia,
		ev.OdontogramaObservacaoEvidencia,
		ev.DocumentosEvidencia,
		ev.DocumentosObservacaoEvidencia,
	}
}

func scanEvidencia(s scanner) (domain.Evidencia, error) {
	var ev domain.Evidencia
	err := s.Scan(
		&ev.ID,
		&ev.IDCaso,
		&ev.Endereco.Rua,
		&ev.Endereco.Bairro,
		&ev.Endereco.CEP,
		&ev.Endereco.Numero,
		&ev.Endereco.Estado,
		&ev.Endereco.Cidade,
		&ev.DataCriacaoEvidencia,
		&ev.RadiografiaEvidencia,
		&ev.RadiografiaObservacaoEvidencia,
		&ev.OdontogramaEvidencia,
		&ev.OdontogramaObservacaoEvidencia,
		&ev.DocumentosEvidencia,
		&ev.DocumentosObservacaoEvidencia,
	)
	return ev, err
}

func collectEvidencias(rows *sql.Rows, log logger.Logger) ([]domain.Evidencia, error) {
	var evidencias []domain.Evidencia
	for rows.Next() {
		ev, err := scanEvidencia(rows)
		if err != nil {
			log.Error("Falha ao mapear evidência na iteração.", err)
			return nil, apperror.NewDBError("Falha ao mapear evidências do DB", err)
		}
		evidencias = append(evidencias, ev)
	}

	if err := rows.Err(); err != nil {
		log.Error("Erro após iteração das linhas de evidências.", err)
		return nil, apperror.NewDBError("Erro após iteração de evidências", err)
	}

	return evidencias, nil
}
