package casorepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/cache"
	"odontolegal/internal/pkg/logger"
	"odontolegal/internal/repository/evidenciarepo"
)

// Chave de cache para casos, indexada pelo número sequencial.
const casoCacheKey = "caso:%d"

// TTL do cache de leitura de caso.
const casoCacheTTL = 5 * time.Minute

const casoColumns = `id, id_caso, titulo_caso, responsavel_caso, processo_caso, data_abertura_caso,
       descricao_caso, status_caso, nome_completo_vitima_caso, data_nac_vitima_caso,
       sexo_vitima_caso, observacao_vitima_caso`

// O número sequencial id_caso é atribuído pela sequence casos_id_caso_seq
// dentro do próprio INSERT, eliminando a janela de corrida do padrão
// "lê o máximo e soma um" da versão anterior do sistema.
const casoInsertSQL = `
        INSERT INTO casos (id, titulo_caso, responsavel_caso, processo_caso, data_abertura_caso,
                           descricao_caso, status_caso, nome_completo_vitima_caso,
                           data_nac_vitima_caso, sexo_vitima_caso, observacao_vitima_caso)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING ` + casoColumns

// CasoRepository implementa o acesso a dados da entidade Caso,
// incluindo a criação composta caso+evidências em uma única transação.
type CasoRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCasoRepository cria e retorna uma nova instância do Repositório de Casos.
func NewCasoRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *CasoRepository {
	return &CasoRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Create insere um novo caso. O número sequencial é atribuído pelo banco.
func (r *CasoRepository) Create(ctx context.Context, caso domain.Caso) (domain.Caso, error) {
	r.logger.Debug("Iniciando Create de caso no repositório.", map[string]interface{}{"titulo": caso.TituloCaso})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	caso.ID = uuid.NewString()

	criado, err := scanCaso(r.DB.QueryRowContext(ctxTimeout, casoInsertSQL, casoInsertArgs(caso)...))
	if err != nil {
		r.logger.Error("Falha ao inserir caso no DB.", err)
		return domain.Caso{}, apperror.NewDBError("Falha ao criar caso", err)
	}

	r.logger.Info("Caso criado com sucesso.", map[string]interface{}{"id_caso": criado.IDCaso, "titulo": criado.TituloCaso})
	return criado, nil
}

// CriarComEvidencias cria um caso e suas evidências como uma unidade atômica.
// Qualquer falha de inserção desfaz a transação inteira: nenhum caso e
// nenhuma evidência permanecem visíveis.
func (r *CasoRepository) CriarComEvidencias(ctx context.Context, caso domain.Caso, evidencias []domain.Evidencia) (domain.Caso, []domain.Evidencia, error) {
	r.logger.Debug("Iniciando transação de caso com evidências.", map[string]interface{}{
		"titulo":     caso.TituloCaso,
		"evidencias": len(evidencias),
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de caso com evidências.", err)
		return domain.Caso{}, nil, apperror.NewDBError("Falha ao iniciar transação", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// 1. Inserir o caso e capturar o número sequencial gerado
	caso.ID = uuid.NewString()
	var criado domain.Caso
	criado, err = scanCaso(tx.QueryRowContext(ctxTimeout, casoInsertSQL, casoInsertArgs(caso)...))
	if err != nil {
		r.logger.Error("Falha ao inserir caso na transação.", err)
		return domain.Caso{}, nil, apperror.NewDBError("Falha ao criar caso", err)
	}

	// 2. Inserir cada evidência com o id_caso recém-criado injetado
	criadas := make([]domain.Evidencia, 0, len(evidencias))
	for i := range evidencias {
		ev := evidencias[i]
		ev.IDCaso = criado.IDCaso

		var criadaEv domain.Evidencia
		criadaEv, err = evidenciarepo.InsertTx(ctxTimeout, tx, ev)
		if err != nil {
			r.logger.Error("Falha ao inserir evidência na transação.", err)
			return domain.Caso{}, nil, apperror.NewDBError("Falha ao criar evidências do caso", err)
		}
		criadas = append(criadas, criadaEv)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de caso com evidências.", err)
		return domain.Caso{}, nil, apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Caso e evidências criados com sucesso.", map[string]interface{}{
		"id_caso":    criado.IDCaso,
		"evidencias": len(criadas),
	})
	return criado, criadas, nil
}

// FindByIDCaso busca um caso pelo número sequencial, com estratégia Cache-Aside.
func (r *CasoRepository) FindByIDCaso(ctx context.Context, idCaso int64) (domain.Caso, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(casoCacheKey, idCaso)
	var caso domain.Caso

	// Tentar obter do cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &caso) == nil {
			return caso, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (conexão perdida, por exemplo): seguimos para o DB
		r.logger.Warn("Falha ao ler caso do cache.", map[string]interface{}{"id_caso": idCaso, "erro": err.Error()})
	}

	query := `SELECT ` + casoColumns + ` FROM casos WHERE id_caso = $1`

	caso, err = scanCaso(r.DB.QueryRowContext(ctxTimeout, query, idCaso))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Caso{}, apperror.NewNotFoundError("Caso não encontrado")
		}
		r.logger.Error("Falha ao buscar caso no DB.", err)
		return domain.Caso{}, apperror.NewDBError("Falha ao buscar caso", err)
	}

	// Popular o cache para futuras leituras
	if casoJSON, marshalErr := json.Marshal(caso); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, casoJSON, casoCacheTTL)
	}

	return caso, nil
}

// FindAll busca todos os casos, ordenados pelo número sequencial.
func (r *CasoRepository) FindAll(ctx context.Context) ([]domain.Caso, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + casoColumns + ` FROM casos ORDER BY id_caso`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de casos.", err)
		return nil, apperror.NewDBError("Falha ao buscar casos", err)
	}
	defer rows.Close()

	return collectCasos(rows, r.logger)
}

// FindByStatus busca os casos com um determinado status.
func (r *CasoRepository) FindByStatus(ctx context.Context, status domain.StatusCaso) ([]domain.Caso, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + casoColumns + ` FROM casos WHERE status_caso = $1 ORDER BY id_caso`

	rows, err := r.DB.QueryContext(ctxTimeout, query, status)
	if err != nil {
		r.logger.Error("Falha ao buscar casos por status.", err)
		return nil, apperror.NewDBError("Falha ao buscar casos por status", err)
	}
	defer rows.Close()

	return collectCasos(rows, r.logger)
}

// FindByResponsavelEStatus busca os casos de um responsável com um determinado status.
func (r *CasoRepository) FindByResponsavelEStatus(ctx context.Context, responsavel string, status domain.StatusCaso) ([]domain.Caso, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + casoColumns + ` FROM casos WHERE responsavel_caso = $1 AND status_caso = $2 ORDER BY id_caso`

	rows, err := r.DB.QueryContext(ctxTimeout, query, responsavel, status)
	if err != nil {
		r.logger.Error("Falha ao buscar casos por responsável e status.", err)
		return nil, apperror.NewDBError("Falha ao buscar casos por responsável e status", err)
	}
	defer rows.Close()

	return collectCasos(rows, r.logger)
}

// Update substitui todos os campos de um caso, localizado pelo número sequencial.
func (r *CasoRepository) Update(ctx context.Context, caso domain.Caso) (domain.Caso, error) {
	r.logger.Debug("Iniciando Update de caso no repositório.", map[string]interface{}{"id_caso": caso.IDCaso})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE casos
        SET titulo_caso = $1, responsavel_caso = $2, processo_caso = $3, data_abertura_caso = $4,
            descricao_caso = $5, status_caso = $6, nome_completo_vitima_caso = $7,
            data_nac_vitima_caso = $8, sexo_vitima_caso = $9, observacao_vitima_caso = $10
        WHERE id_caso = $11
        RETURNING ` + casoColumns

	atualizado, err := scanCaso(r.DB.QueryRowContext(ctxTimeout, query,
		caso.TituloCaso,
		caso.ResponsavelCaso,
		caso.ProcessoCaso,
		caso.DataAberturaCaso,
		caso.DescricaoCaso,
		caso.StatusCaso,
		caso.NomeCompletoVitimaCaso,
		caso.DataNacVitimaCaso,
		caso.SexoVitimaCaso,
		caso.ObservacaoVitimaCaso,
		caso.IDCaso,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Caso{}, apperror.NewNotFoundError("Caso não encontrado")
		}
		r.logger.Error("Falha ao atualizar caso no DB.", err)
		return domain.Caso{}, apperror.NewDBError("Falha ao atualizar caso", err)
	}

	// Invalida a entrada de cache do caso alterado
	r.Cache.Delete(ctxTimeout, fmt.Sprintf(casoCacheKey, atualizado.IDCaso))

	r.logger.Info("Caso atualizado com sucesso.", map[string]interface{}{"id_caso": atualizado.IDCaso})
	return atualizado, nil
}

// Delete remove um caso pelo número sequencial.
// As evidências do caso não são removidas em cascata.
func (r *CasoRepository) Delete(ctx context.Context, idCaso int64) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM casos WHERE id_caso = $1`, idCaso)
	if err != nil {
		r.logger.Error("Falha ao deletar caso do DB.", err)
		return apperror.NewDBError("Falha ao deletar caso", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete de caso.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if rowsAffected == 0 {
		return apperror.NewNotFoundError("Caso não encontrado")
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(casoCacheKey, idCaso))

	r.logger.Info("Caso deletado com sucesso.", map[string]interface{}{"id_caso": idCaso})
	return nil
}

// --- Helpers de mapeamento ---

type scanner interface {
	Scan(dest ...interface{}) error
}

func casoInsertArgs(caso domain.Caso) []interface{} {
	return []interface{}{
		caso.ID,
		caso.TituloCaso,
		caso.ResponsavelCaso,
		caso.ProcessoCaso,
		caso.DataAberturaCaso,
		caso.DescricaoCaso,
		caso.StatusCaso,
		caso.NomeCompletoVitimaCaso,
		caso.DataNacVitimaCaso,
		caso.SexoVitimaCaso,
		caso.ObservacaoVitimaCaso,
	}
}

func scanCaso(s scanner) (domain.Caso, error) {
	var c domain.Caso
	err := s.Scan(
		&c.ID,
		&c.IDCaso,
		&c.TituloCaso,
		&c.ResponsavelCaso,
		&c.ProcessoCaso,
		&c.DataAberturaCaso,
		&c.DescricaoCaso,
		&c.StatusCaso,
		&c.NomeCompletoVitimaCaso,
		&c.DataNacVitimaCaso,
		&c.SexoVitimaCaso,
		&c.ObservacaoVitimaCaso,
	)
	return c, err
}

func collectCasos(rows *sql.Rows, log logger.Logger) ([]domain.Caso, error) {
	var casos []domain.Caso
	for rows.Next() {
		c, err := scanCaso(rows)
		if err != nil {
			log.Error("Falha ao mapear caso na iteração.", err)
			return nil, apperror.NewDBError("Falha ao mapear casos do DB", err)
		}
		casos = append(casos, c)
	}

	if err := rows.Err(); err != nil {
		log.Error("Erro após iteração das linhas de casos.", err)
		return nil, apperror.NewDBError("Erro após iteração de casos", err)
	}

	return casos, nil
}
