package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"odontolegal/internal/domain"
	"odontolegal/internal/pkg/token"
)

// ContextKey é o tipo da chave usada para armazenar as claims do usuário no
// contexto. Um tipo próprio garante que não haja conflito com chaves string.
type ContextKey int

const (
	UserClaimsKey ContextKey = iota
)

// UserClaims representa os dados do usuário extraídos do token JWT,
// que serão anexados ao contexto.
type UserClaims struct {
	UserID     string
	TipoPerfil domain.PerfilUsuario
}

// TokenService define o contrato de validação necessário para o middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.CustomClaims, error)
}

// Autenticar valida o JWT do header Authorization e anexa as claims
// (UserID e TipoPerfil) ao contexto da requisição.
// Header ausente ou mal formatado responde 401; token inválido ou expirado
// responde 403, como no serviço original.
func Autenticar(tokenSvc TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// 1. Extrair o Token do header Authorization: Bearer <token>
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				escreverErro(w, http.StatusUnauthorized, "Token não fornecido")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				escreverErro(w, http.StatusUnauthorized, "Token inválido ou mal formatado")
				return
			}

			// 2. Validar o Token
			claims, err := tokenSvc.ValidateToken(tokenString)
			if err != nil {
				escreverErro(w, http.StatusForbidden, "Token inválido ou expirado")
				return
			}

			// 3. Anexar Claims ao Contexto
			userClaims := UserClaims{
				UserID:     claims.UserID,
				TipoPerfil: domain.PerfilUsuario(claims.TipoPerfil),
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserClaimsFromContext é uma função utilitária para extrair as claims no handler.
func GetUserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(UserClaims)
	return claims, ok
}

// Autorizar restringe a rota aos perfis informados. Deve ser encadeado
// depois de Autenticar; predicado puro, sem acesso ao banco.
func Autorizar(perfisPermitidos ...domain.PerfilUsuario) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims, ok := GetUserClaimsFromContext(r.Context())
			if !ok {
				// Autenticar não foi executado ou falhou em anexar as claims.
				escreverErro(w, http.StatusUnauthorized, "Autorização necessária. Token não processado")
				return
			}

			autorizado := false
			for _, perfil := range perfisPermitidos {
				if claims.TipoPerfil == perfil {
					autorizado = true
					break
				}
			}

			if !autorizado {
				escreverErro(w, http.StatusForbidden, "Acesso negado: perfil não autorizado")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// escreverErro envia a resposta de falha de autenticação/autorização no
// mesmo envelope JSON dos handlers.
func escreverErro(w http.ResponseWriter, status int, mensagem string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sucesso":  false,
		"mensagem": mensagem,
	})
}
