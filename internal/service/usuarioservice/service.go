package usuarioservice

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
	"odontolegal/internal/pkg/token"
)

// UsuarioRepository define o contrato de persistência que este serviço espera.
type UsuarioRepository interface {
	Save(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error)
	FindByEmail(ctx context.Context, email string) (domain.Usuario, error)
	FindByID(ctx context.Context, id string) (domain.Usuario, error)
	FindAll(ctx context.Context) ([]domain.Usuario, error)
	FindByTipoPerfil(ctx context.Context, perfil domain.PerfilUsuario) ([]domain.Usuario, error)
	Update(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error)
	UpdateFoto(ctx context.Context, id string, fotoBase64 string) (domain.Usuario, error)
	Delete(ctx context.Context, id string) error
}

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, tipoPerfil string) (string, error)
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Service implementa as regras de negócio da entidade Usuario.
type Service struct {
	repo     UsuarioRepository
	tokenSvc TokenService
	logger   logger.Logger
}

// NewService cria uma nova instância do serviço de usuários.
func NewService(repo UsuarioRepository, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		tokenSvc: tokenSvc,
		logger:   log,
	}
}

// Cadastrar registra um novo usuário: valida os campos obrigatórios,
// gera o hash da senha e persiste. E-mail duplicado resulta em conflito.
func (s *Service) Cadastrar(ctx context.Context, cadastro domain.CadastroUsuario) (domain.Usuario, error) {
	if cadastro.PrimeiroNome == "" || cadastro.SegundoNome == "" || cadastro.NomeCompleto == "" {
		return domain.Usuario{}, apperror.NewValidationError("Primeiro nome, segundo nome e nome completo são obrigatórios")
	}
	if cadastro.DataNascimento.IsZero() {
		return domain.Usuario{}, apperror.NewValidationError("Data de nascimento é obrigatória")
	}
	if !domain.EmailValido(cadastro.Email) {
		return domain.Usuario{}, apperror.NewValidationError("Por favor, forneça um email válido")
	}
	if len(cadastro.Senha) < 6 {
		return domain.Usuario{}, apperror.NewValidationError("A senha deve ter pelo menos 6 caracteres")
	}
	if !cadastro.TipoPerfil.Valido() {
		return domain.Usuario{}, apperror.NewValidationError("Tipo de perfil inválido. Use: Admin, Perito ou Assistente")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cadastro.Senha), bcrypt.DefaultCost)
	if err != nil {
		return domain.Usuario{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	novo := domain.Usuario{
		PrimeiroNome:      cadastro.PrimeiroNome,
		SegundoNome:       cadastro.SegundoNome,
		NomeCompleto:      cadastro.NomeCompleto,
		DataNascimento:    cadastro.DataNascimento,
		Email:             cadastro.Email,
		SenhaHash:         string(hash),
		Telefone:          cadastro.Telefone,
		TipoPerfil:        cadastro.TipoPerfil,
		FotoPerfilUsuario: "",
		CroUF:             cadastro.CroUF,
	}

	criado, err := s.repo.Save(ctx, novo)
	if err != nil {
		return domain.Usuario{}, err
	}

	s.logger.Info("Usuário cadastrado.", map[string]interface{}{"user_id": criado.ID, "tipo_perfil": string(criado.TipoPerfil)})
	return criado, nil
}

// Login autentica um usuário e emite um JWT. E-mail inexistente e senha
// incorreta retornam a mesma mensagem, sem diferenciar os dois casos.
func (s *Service) Login(ctx context.Context, email string, senha string) (domain.SessaoUsuario, error) {
	if email == "" || senha == "" {
		return domain.SessaoUsuario{}, apperror.NewUnauthorizedError("Credenciais inválidas")
	}

	usuario, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// NotFound vira 401 para não revelar se o e-mail existe.
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.SessaoUsuario{}, apperror.NewUnauthorizedError("Credenciais inválidas")
		}
		return domain.SessaoUsuario{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.SenhaHash), []byte(senha)); err != nil {
		return domain.SessaoUsuario{}, apperror.NewUnauthorizedError("Credenciais inválidas")
	}

	tokenString, err := s.tokenSvc.GenerateToken(usuario.ID, string(usuario.TipoPerfil))
	if err != nil {
		return domain.SessaoUsuario{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return domain.SessaoUsuario{
		Token:        tokenString,
		ID:           usuario.ID,
		PrimeiroNome: usuario.PrimeiroNome,
		SegundoNome:  usuario.SegundoNome,
		Nome:         usuario.NomeCompleto,
		Email:        usuario.Email,
		Telefone:     usuario.Telefone,
		TipoPerfil:   usuario.TipoPerfil,
		CroUF:        usuario.CroUF,
		FotoPerfil:   usuario.FotoPerfilUsuario,
	}, nil
}

// Listar retorna todos os usuários cadastrados.
func (s *Service) Listar(ctx context.Context) ([]domain.Usuario, error) {
	return s.repo.FindAll(ctx)
}

// ObterPorID retorna um usuário pelo ID.
func (s *Service) ObterPorID(ctx context.Context, id string) (domain.Usuario, error) {
	if id == "" {
		return domain.Usuario{}, apperror.NewValidationError("ID do usuário é obrigatório")
	}
	return s.repo.FindByID(ctx, id)
}

// ListarPorTipoPerfil retorna os usuários de um perfil.
// Lista vazia vale 404, como no comportamento original.
func (s *Service) ListarPorTipoPerfil(ctx context.Context, perfil domain.PerfilUsuario) ([]domain.Usuario, error) {
	if !perfil.Valido() {
		return nil, apperror.NewValidationError("Tipo de perfil inválido. Use: Admin, Perito ou Assistente")
	}

	usuarios, err := s.repo.FindByTipoPerfil(ctx, perfil)
	if err != nil {
		return nil, err
	}
	if len(usuarios) == 0 {
		return nil, apperror.NewNotFoundError("Nenhum usuário encontrado com esse tipo de perfil")
	}
	return usuarios, nil
}

// Atualizar aplica um patch parcial aos dados de perfil: somente os campos
// presentes no payload são alterados, os omitidos preservam o valor atual.
// A senha só é re-hasheada quando uma nova for informada.
func (s *Service) Atualizar(ctx context.Context, id string, atualizacao domain.AtualizacaoUsuario) (domain.Usuario, error) {
	if atualizacao.Email != nil && !domain.EmailValido(*atualizacao.Email) {
		return domain.Usuario{}, apperror.NewValidationError("Por favor, forneça um email válido")
	}
	if atualizacao.TipoPerfil != nil && !atualizacao.TipoPerfil.Valido() {
		return domain.Usuario{}, apperror.NewValidationError("Tipo de perfil inválido. Use: Admin, Perito ou Assistente")
	}

	atual, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Usuario{}, err
	}

	if atualizacao.PrimeiroNome != nil {
		atual.PrimeiroNome = *atualizacao.PrimeiroNome
	}
	if atualizacao.SegundoNome != nil {
		atual.SegundoNome = *atualizacao.SegundoNome
	}
	if atualizacao.NomeCompleto != nil {
		atual.NomeCompleto = *atualizacao.NomeCompleto
	}
	if atualizacao.DataNascimento != nil {
		atual.DataNascimento = *atualizacao.DataNascimento
	}
	if atualizacao.Email != nil {
		atual.Email = *atualizacao.Email
	}
	if atualizacao.Telefone != nil {
		atual.Telefone = *atualizacao.Telefone
	}
	if atualizacao.TipoPerfil != nil {
		atual.TipoPerfil = *atualizacao.TipoPerfil
	}
	if atualizacao.CroUF != nil {
		atual.CroUF = *atualizacao.CroUF
	}

	if atualizacao.Senha != nil && *atualizacao.Senha != "" {
		if len(*atualizacao.Senha) < 6 {
			return domain.Usuario{}, apperror.NewValidationError("A senha deve ter pelo menos 6 caracteres")
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(*atualizacao.Senha), bcrypt.DefaultCost)
		if hashErr != nil {
			return domain.Usuario{}, apperror.NewInternalError("Falha ao gerar hash da senha.", hashErr)
		}
		atual.SenhaHash = string(hash)
	}

	return s.repo.Update(ctx, atual)
}

// AtualizarFoto troca a foto de perfil. O payload deve ser uma imagem em
// Base64 no formato data URL (prefixo data:image).
func (s *Service) AtualizarFoto(ctx context.Context, id string, fotoBase64 string) (domain.Usuario, error) {
	if fotoBase64 == "" {
		return domain.Usuario{}, apperror.NewValidationError("Nenhuma imagem enviada")
	}
	if !strings.HasPrefix(fotoBase64, "data:image") {
		return domain.Usuario{}, apperror.NewValidationError("Formato de imagem inválido")
	}

	return s.repo.UpdateFoto(ctx, id, fotoBase64)
}

// Excluir remove um usuário pelo ID.
func (s *Service) Excluir(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("ID do usuário é obrigatório")
	}
	return s.repo.Delete(ctx, id)
}
