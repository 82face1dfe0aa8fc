package usuariorepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
)

// uniqueViolation é o código do PostgreSQL para violação de chave única.
const uniqueViolation = "23505"

const usuarioColumns = `id, primeiro_nome, segundo_nome, nome_completo, data_nascimento,
       email, senha_hash, telefone, tipo_perfil, foto_perfil_usuario, cro_uf, data_criacao`

// UsuarioRepository implementa o acesso a dados da entidade Usuario.
type UsuarioRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUsuarioRepository cria uma nova instância do UsuarioRepository, injetando o DB.
func NewUsuarioRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UsuarioRepository {
	return &UsuarioRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Save insere um novo usuário no banco de dados.
// E-mail duplicado é traduzido para ConflictError.
func (r *UsuarioRepository) Save(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"email": usuario.Email})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	usuario.ID = uuid.NewString()
	usuario.DataCriacao = time.Now().UTC()

	query := `
        INSERT INTO usuarios (id, primeiro_nome, segundo_nome, nome_completo, data_nascimento,
                              email, senha_hash, telefone, tipo_perfil, foto_perfil_usuario, cro_uf, data_criacao)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		usuario.ID,
		usuario.PrimeiroNome,
		usuario.SegundoNome,
		usuario.NomeCompleto,
		usuario.DataNascimento,
		usuario.Email,
		usuario.SenhaHash,
		usuario.Telefone,
		usuario.TipoPerfil,
		usuario.FotoPerfilUsuario,
		usuario.CroUF,
		usuario.DataCriacao,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			r.logger.Info("Tentativa de cadastro com e-mail duplicado.", map[string]interface{}{"email": usuario.Email})
			return domain.Usuario{}, apperror.NewConflictError("Email já cadastrado")
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao criar usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": usuario.ID, "email": usuario.Email})
	return usuario, nil
}

// FindByEmail busca um usuário pelo endereço de e-mail.
func (r *UsuarioRepository) FindByEmail(ctx context.Context, email string) (domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1`

	usuario, err := scanUsuario(r.DB.QueryRowContext(ctxTimeout, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Info("Usuário não encontrado no DB por email.", map[string]interface{}{"email": email})
			return domain.Usuario{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com email '%s' não encontrado", email))
		}
		r.logger.Error("Falha ao buscar usuário por email no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao buscar usuário por email", err)
	}

	return usuario, nil
}

// FindByID busca um usuário pelo ID.
func (r *UsuarioRepository) FindByID(ctx context.Context, id string) (domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`

	usuario, err := scanUsuario(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Usuario{}, apperror.NewNotFoundError("Usuário não encontrado")
		}
		r.logger.Error("Falha ao buscar usuário por ID no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}

	return usuario, nil
}

// FindAll busca todos os usuários cadastrados.
func (r *UsuarioRepository) FindAll(ctx context.Context) ([]domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + usuarioColumns + ` FROM usuarios ORDER BY nome_completo`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de usuários.", err)
		return nil, apperror.NewDBError("Falha ao buscar usuários", err)
	}
	defer rows.Close()

	return collectUsuarios(rows, r.logger)
}

// FindByTipoPerfil busca os usuários de um determinado perfil.
func (r *UsuarioRepository) FindByTipoPerfil(ctx context.Context, perfil domain.PerfilUsuario) ([]domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE tipo_perfil = $1 ORDER BY nome_completo`

	rows, err := r.DB.QueryContext(ctxTimeout, query, perfil)
	if err != nil {
		r.logger.Error("Falha ao buscar usuários por tipo de perfil.", err)
		return nil, apperror.NewDBError("Falha ao buscar usuários por tipo de perfil", err)
	}
	defer rows.Close()

	return collectUsuarios(rows, r.logger)
}

// Update substitui os campos de perfil de um usuário existente.
// O hash da senha só é alterado quando uma nova senha foi fornecida (decidido no serviço).
func (r *UsuarioRepository) Update(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error) {
	r.logger.Debug("Iniciando Update de usuário no repositório.", map[string]interface{}{"user_id": usuario.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE usuarios
        SET primeiro_nome = $1, segundo_nome = $2, nome_completo = $3, data_nascimento = $4,
            email = $5, senha_hash = $6, telefone = $7, tipo_perfil = $8, cro_uf = $9
        WHERE id = $10
        RETURNING ` + usuarioColumns

	atualizado, err := scanUsuario(r.DB.QueryRowContext(ctxTimeout, query,
		usuario.PrimeiroNome,
		usuario.SegundoNome,
		usuario.NomeCompleto,
		usuario.DataNascimento,
		usuario.Email,
		usuario.SenhaHash,
		usuario.Telefone,
		usuario.TipoPerfil,
		usuario.CroUF,
		usuario.ID,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Usuario{}, apperror.NewNotFoundError("Usuário não encontrado")
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return domain.Usuario{}, apperror.NewConflictError("Email já cadastrado")
		}
		r.logger.Error("Falha ao atualizar usuário no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao atualizar usuário", err)
	}

	r.logger.Info("Usuário atualizado com sucesso.", map[string]interface{}{"user_id": atualizado.ID})
	return atualizado, nil
}

// UpdateFoto atualiza apenas a foto de perfil do usuário.
func (r *UsuarioRepository) UpdateFoto(ctx context.Context, id string, fotoBase64 string) (domain.Usuario, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE usuarios
        SET foto_perfil_usuario = $1
        WHERE id = $2
        RETURNING ` + usuarioColumns

	atualizado, err := scanUsuario(r.DB.QueryRowContext(ctxTimeout, query, fotoBase64, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Usuario{}, apperror.NewNotFoundError("Usuário não encontrado")
		}
		r.logger.Error("Falha ao atualizar foto de perfil no DB.", err)
		return domain.Usuario{}, apperror.NewDBError("Falha ao atualizar foto de perfil", err)
	}

	r.logger.Info("Foto de perfil atualizada.", map[string]interface{}{"user_id": atualizado.ID})
	return atualizado, nil
}

// Delete remove um usuário pelo ID.
func (r *UsuarioRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Falha ao deletar usuário do DB.", err)
		return apperror.NewDBError("Falha ao deletar usuário", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após Delete de usuário.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}

	if rowsAffected == 0 {
		return apperror.NewNotFoundError("Usuário não encontrado")
	}

	r.logger.Info("Usuário deletado com sucesso.", map[string]interface{}{"user_id": id})
	return nil
}

// scanner abstrai *sql.Row e *sql.Rows para o mapeamento de colunas.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUsuario(s scanner) (domain.Usuario, error) {
	var u domain.Usuario
	err := s.Scan(
		&u.ID,
		&u.PrimeiroNome,
		&u.SegundoNome,
		&u.NomeCompleto,
		&u.DataNascimento,
		&u.Email,
		&u.SenhaHash,
		&u.Telefone,
		&u.TipoPerfil,
		&u.FotoPerfilUsuario,
		&u.CroUF,
		&u.DataCriacao,
	)
	return u, err
}

func collectUsuarios(rows *sql.Rows, log logger.Logger) ([]domain.Usuario, error) {
	var usuarios []domain.Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			log.Error("Falha ao mapear usuário na iteração.", err)
			return nil, apperror.NewDBError("Falha ao mapear usuários do DB", err)
		}
		usuarios = append(usuarios, u)
	}

	if err := rows.Err(); err != nil {
		log.Error("Erro após iteração das linhas de usuários.", err)
		return nil, apperror.NewDBError("Erro após iteração de usuários", err)
	}

	return usuarios, nil
}
