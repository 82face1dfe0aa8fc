package usuarioservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"odontolegal/internal/domain"
	apperror "odontolegal/internal/errors"
	"odontolegal/internal/pkg/logger"
	"odontolegal/internal/pkg/token"
	"odontolegal/internal/service/usuarioservice"
)

// MockUsuarioRepository é uma implementação mock da interface UsuarioRepository
type MockUsuarioRepository struct {
	mock.Mock
}

func (m *MockUsuarioRepository) Save(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error) {
	args := m.Called(ctx, usuario)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) FindByEmail(ctx context.Context, email string) (domain.Usuario, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) FindByID(ctx context.Context, id string) (domain.Usuario, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) FindAll(ctx context.Context) ([]domain.Usuario, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) FindByTipoPerfil(ctx context.Context, perfil domain.PerfilUsuario) ([]domain.Usuario, error) {
	args := m.Called(ctx, perfil)
	return args.Get(0).([]domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) Update(ctx context.Context, usuario domain.Usuario) (domain.Usuario, error) {
	args := m.Called(ctx, usuario)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) UpdateFoto(ctx context.Context, id string, fotoBase64 string) (domain.Usuario, error) {
	args := m.Called(ctx, id, fotoBase64)
	return args.Get(0).(domain.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func novoServico(repo *MockUsuarioRepository) *usuarioservice.Service {
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	return usuarioservice.NewService(repo, tokenSvc, logger.NewLogger("debug"))
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func perfilPtr(p domain.PerfilUsuario) *domain.PerfilUsuario { return &p }

func cadastroValido() domain.CadastroUsuario {
	return domain.CadastroUsuario{
		PrimeiroNome:   "Ana",
		SegundoNome:    "Silva",
		NomeCompleto:   "Ana Silva",
		DataNascimento: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
		Email:          "ana.silva@example.com",
		Senha:          "senha123",
		Telefone:       "81999990000",
		TipoPerfil:     domain.PerfilPerito,
		CroUF:          "CRO-PE",
	}
}

// TestCadastrar_Success testa o cadastro de um usuário válido com hash de senha.
func TestCadastrar_Success(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	cadastro := cadastroValido()

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.Usuario) bool {
		// A senha nunca é persistida em texto plano.
		if u.SenhaHash == cadastro.Senha || u.SenhaHash == "" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.SenhaHash), []byte(cadastro.Senha)) == nil
	})).Return(domain.Usuario{ID: uuid.New().String(), Email: cadastro.Email, TipoPerfil: domain.PerfilPerito}, nil)

	criado, err := svc.Cadastrar(context.Background(), cadastro)

	assert.NoError(t, err)
	assert.NotEmpty(t, criado.ID)
	assert.Equal(t, domain.PerfilPerito, criado.TipoPerfil)
	mockRepo.AssertExpectations(t)
}

// TestCadastrar_Fail_EmailInvalido testa a rejeição de um email malformado.
func TestCadastrar_Fail_EmailInvalido(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	cadastro := cadastroValido()
	cadastro.Email = "nao-e-email"

	_, err := svc.Cadastrar(context.Background(), cadastro)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

// TestCadastrar_Fail_SenhaCurta testa a rejeição de uma senha com menos de 6 caracteres.
func TestCadastrar_Fail_SenhaCurta(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	cadastro := cadastroValido()
	cadastro.Senha = "12345"

	_, err := svc.Cadastrar(context.Background(), cadastro)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

// TestCadastrar_Fail_PerfilInvalido testa a rejeição de um tipo de perfil desconhecido.
func TestCadastrar_Fail_PerfilInvalido(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	cadastro := cadastroValido()
	cadastro.TipoPerfil = domain.PerfilUsuario("Gerente")

	_, err := svc.Cadastrar(context.Background(), cadastro)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Save")
}

// TestCadastrar_Fail_EmailDuplicado testa a propagação do conflito de email único.
func TestCadastrar_Fail_EmailDuplicado(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.Usuario{}, apperror.NewConflictError("Email já cadastrado"))

	_, err := svc.Cadastrar(context.Background(), cadastroValido())

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestLogin_Success testa o login com credenciais corretas e emissão de token.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	senha := "senha123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)

	usuario := domain.Usuario{
		ID:           uuid.New().String(),
		PrimeiroNome: "Ana",
		NomeCompleto: "Ana Silva",
		Email:        "ana.silva@example.com",
		SenhaHash:    string(hash),
		TipoPerfil:   domain.PerfilAdmin,
	}

	mockRepo.On("FindByEmail", mock.Anything, usuario.Email).Return(usuario, nil)

	sessao, err := svc.Login(context.Background(), usuario.Email, senha)

	assert.NoError(t, err)
	assert.NotEmpty(t, sessao.Token)
	assert.Equal(t, usuario.ID, sessao.ID)
	assert.Equal(t, domain.PerfilAdmin, sessao.TipoPerfil)
	mockRepo.AssertExpectations(t)
}

// TestLogin_Fail_SenhaIncorreta testa que senha errada vira 401 com mensagem genérica.
func TestLogin_Fail_SenhaIncorreta(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-correta"), bcrypt.DefaultCost)
	usuario := domain.Usuario{ID: uuid.New().String(), Email: "ana@example.com", SenhaHash: string(hash)}

	mockRepo.On("FindByEmail", mock.Anything, usuario.Email).Return(usuario, nil)

	_, err := svc.Login(context.Background(), usuario.Email, "senha-errada")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Equal(t, "Credenciais inválidas", err.Error())
	mockRepo.AssertExpectations(t)
}

// TestLogin_Fail_EmailInexistente testa que email desconhecido retorna a mesma
// mensagem genérica de credenciais, sem revelar se o email existe.
func TestLogin_Fail_EmailInexistente(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	mockRepo.On("FindByEmail", mock.Anything, "fantasma@example.com").
		Return(domain.Usuario{}, apperror.NewNotFoundError("Usuário não encontrado"))

	_, err := svc.Login(context.Background(), "fantasma@example.com", "qualquer")

	assert.Error(t, err)
	assert.IsType(t, &apperror.UnauthorizedError{}, err)
	assert.Equal(t, "Credenciais inválidas", err.Error())
	mockRepo.AssertExpectations(t)
}

// TestListarPorTipoPerfil_Fail_Vazio testa que uma lista vazia vale NotFound.
func TestListarPorTipoPerfil_Fail_Vazio(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	mockRepo.On("FindByTipoPerfil", mock.Anything, domain.PerfilAssistente).
		Return([]domain.Usuario{}, nil)

	_, err := svc.ListarPorTipoPerfil(context.Background(), domain.PerfilAssistente)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestAtualizar_Success_MantemSenha testa que a senha antiga permanece quando
// nenhuma nova é enviada.
func TestAtualizar_Success_MantemSenha(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	id := uuid.New().String()
	hashAntigo, _ := bcrypt.GenerateFromPassword([]byte("senha-antiga"), bcrypt.DefaultCost)

	atual := domain.Usuario{ID: id, Email: "ana@example.com", SenhaHash: string(hashAntigo)}
	atualizacao := domain.AtualizacaoUsuario{
		PrimeiroNome:   strPtr("Ana"),
		SegundoNome:    strPtr("Souza"),
		NomeCompleto:   strPtr("Ana Souza"),
		DataNascimento: timePtr(time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC)),
		Email:          strPtr("ana@example.com"),
		TipoPerfil:     perfilPtr(domain.PerfilPerito),
	}

	mockRepo.On("FindByID", mock.Anything, id).Return(atual, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.Usuario) bool {
		return u.SenhaHash == string(hashAntigo) && u.NomeCompleto == "Ana Souza"
	})).Return(domain.Usuario{ID: id, NomeCompleto: "Ana Souza"}, nil)

	atualizado, err := svc.Atualizar(context.Background(), id, atualizacao)

	assert.NoError(t, err)
	assert.Equal(t, "Ana Souza", atualizado.NomeCompleto)
	mockRepo.AssertExpectations(t)
}

// TestAtualizar_Success_TrocaSenha testa o re-hash quando uma nova senha é enviada.
func TestAtualizar_Success_TrocaSenha(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	id := uuid.New().String()
	hashAntigo, _ := bcrypt.GenerateFromPassword([]byte("senha-antiga"), bcrypt.DefaultCost)

	atual := domain.Usuario{ID: id, Email: "ana@example.com", SenhaHash: string(hashAntigo)}
	atualizacao := domain.AtualizacaoUsuario{
		Senha: strPtr("senha-nova"),
	}

	mockRepo.On("FindByID", mock.Anything, id).Return(atual, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.Usuario) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.SenhaHash), []byte("senha-nova")) == nil
	})).Return(domain.Usuario{ID: id}, nil)

	_, err := svc.Atualizar(context.Background(), id, atualizacao)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestAtualizar_Success_CampoUnico testa que um payload com um único campo é
// aceito e preserva todos os demais valores armazenados.
func TestAtualizar_Success_CampoUnico(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	id := uuid.New().String()
	hashAntigo, _ := bcrypt.GenerateFromPassword([]byte("senha-antiga"), bcrypt.DefaultCost)

	atual := domain.Usuario{
		ID:           id,
		PrimeiroNome: "Ana",
		NomeCompleto: "Ana Silva",
		Email:        "ana@example.com",
		SenhaHash:    string(hashAntigo),
		Telefone:     "81999990000",
		TipoPerfil:   domain.PerfilPerito,
		CroUF:        "CRO-PE",
	}

	atualizacao := domain.AtualizacaoUsuario{Telefone: strPtr("81988887777")}

	mockRepo.On("FindByID", mock.Anything, id).Return(atual, nil)
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.Usuario) bool {
		return u.Telefone == "81988887777" &&
			u.Email == "ana@example.com" &&
			u.NomeCompleto == "Ana Silva" &&
			u.CroUF == "CRO-PE" &&
			u.TipoPerfil == domain.PerfilPerito &&
			u.SenhaHash == string(hashAntigo)
	})).Return(atual, nil)

	_, err := svc.Atualizar(context.Background(), id, atualizacao)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestAtualizar_Fail_EmailInvalido testa que o email só é validado quando enviado.
func TestAtualizar_Fail_EmailInvalido(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	atualizacao := domain.AtualizacaoUsuario{Email: strPtr("nao-e-email")}

	_, err := svc.Atualizar(context.Background(), uuid.New().String(), atualizacao)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindByID")
	mockRepo.AssertNotCalled(t, "Update")
}

// TestAtualizarFoto_Fail_FormatoInvalido testa a rejeição de um payload sem prefixo data:image.
func TestAtualizarFoto_Fail_FormatoInvalido(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	_, err := svc.AtualizarFoto(context.Background(), uuid.New().String(), "iVBORw0KGgo=")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "UpdateFoto")
}

// TestAtualizarFoto_Success testa a troca de foto com data URL válida.
func TestAtualizarFoto_Success(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	id := uuid.New().String()
	foto := "data:image/png;base64,iVBORw0KGgo="

	mockRepo.On("UpdateFoto", mock.Anything, id, foto).
		Return(domain.Usuario{ID: id, FotoPerfilUsuario: foto}, nil)

	atualizado, err := svc.AtualizarFoto(context.Background(), id, foto)

	assert.NoError(t, err)
	assert.Equal(t, foto, atualizado.FotoPerfilUsuario)
	mockRepo.AssertExpectations(t)
}

// TestExcluir_Fail_NaoEncontrado testa a propagação do NotFound na exclusão.
func TestExcluir_Fail_NaoEncontrado(t *testing.T) {
	mockRepo := new(MockUsuarioRepository)
	svc := novoServico(mockRepo)

	id := uuid.New().String()
	mockRepo.On("Delete", mock.Anything, id).Return(apperror.NewNotFoundError("Usuário não encontrado"))

	err := svc.Excluir(context.Background(), id)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertExpectations(t)
}
