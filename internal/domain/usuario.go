package domain

import (
	"regexp"
	"time"
)

// Usuario representa a entidade de usuário do sistema pericial.
type Usuario struct {
	ID                string        `json:"id"`
	PrimeiroNome      string        `json:"primeiro_nome"`
	SegundoNome       string        `json:"segundo_nome"`
	NomeCompleto      string        `json:"nome_completo"`
	DataNascimento    time.Time     `json:"data_nascimento"`
	Email             string        `json:"email"`
	SenhaHash         string        `json:"-"` // Oculta o hash da senha no JSON de resposta
	Telefone          string        `json:"telefone"`
	TipoPerfil        PerfilUsuario `json:"tipo_perfil"`
	FotoPerfilUsuario string        `json:"foto_perfil_usuario"` // Imagem em Base64 (data:image/...)
	CroUF             string        `json:"cro_uf"`
	DataCriacao       time.Time     `json:"data_criacao"`
}

// PerfilUsuario é um tipo string para representar o perfil do usuário no sistema.
type PerfilUsuario string

// Constantes para os perfis de usuário
const (
	PerfilAdmin      PerfilUsuario = "Admin"
	PerfilPerito     PerfilUsuario = "Perito"
	PerfilAssistente PerfilUsuario = "Assistente"
)

// Valido informa se o perfil pertence ao conjunto permitido.
func (p PerfilUsuario) Valido() bool {
	switch p {
	case PerfilAdmin, PerfilPerito, PerfilAssistente:
		return true
	}
	return false
}

// emailRegex segue o mesmo padrão exigido pelo cadastro.
var emailRegex = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

// EmailValido valida o formato do endereço de e-mail.
func EmailValido(email string) bool {
	return emailRegex.MatchString(email)
}

// CadastroUsuario representa o payload de entrada para o cadastro.
type CadastroUsuario struct {
	PrimeiroNome   string        `json:"primeiro_nome"`
	SegundoNome    string        `json:"segundo_nome"`
	NomeCompleto   string        `json:"nome_completo"`
	DataNascimento time.Time     `json:"data_nascimento"`
	Email          string        `json:"email"`
	Senha          string        `json:"senha"`
	Telefone       string        `json:"telefone"`
	TipoPerfil     PerfilUsuario `json:"tipo_perfil"`
	CroUF          string        `json:"cro_uf"`
}

// AtualizacaoUsuario representa o payload de atualização parcial de perfil:
// somente os campos presentes no JSON são alterados, os demais permanecem.
// Senha ausente ou vazia mantém a senha atual.
type AtualizacaoUsuario struct {
	PrimeiroNome   *string        `json:"primeiro_nome"`
	SegundoNome    *string        `json:"segundo_nome"`
	NomeCompleto   *string        `json:"nome_completo"`
	DataNascimento *time.Time     `json:"data_nascimento"`
	Email          *string        `json:"email"`
	Senha          *string        `json:"senha"`
	Telefone       *string        `json:"telefone"`
	TipoPerfil     *PerfilUsuario `json:"tipo_perfil"`
	CroUF          *string        `json:"cro_uf"`
}

// SessaoUsuario é o resultado de um login bem-sucedido: o token JWT emitido
// e os dados de identidade do usuário, sem a senha.
type SessaoUsuario struct {
	Token        string        `json:"token"`
	ID           string        `json:"id"`
	PrimeiroNome string        `json:"primeiro_nome"`
	SegundoNome  string        `json:"segundo_nome"`
	Nome         string        `json:"nome"`
	Email        string        `json:"email"`
	Telefone     string        `json:"telefone"`
	TipoPerfil   PerfilUsuario `json:"tipo_perfil"`
	CroUF        string        `json:"cro_uf"`
	FotoPerfil   string        `json:"foto_perfil"`
}
