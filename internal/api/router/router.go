package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"odontolegal/config"
	"odontolegal/internal/api/caso"
	"odontolegal/internal/api/evidencia"
	"odontolegal/internal/api/usuario"
	"odontolegal/internal/domain"
	"odontolegal/internal/pkg/cache"
	"odontolegal/internal/pkg/logger"
	"odontolegal/internal/pkg/middleware"
)

// Handlers reúne os handlers HTTP de cada recurso para montagem do roteador.
type Handlers struct {
	Usuario   *usuario.Handler
	Caso      *caso.Handler
	Evidencia *evidencia.Handler
}

// New monta o roteador da API: middlewares globais, rotas públicas e as rotas
// protegidas por autenticação JWT e autorização por perfil.
func New(cfg *config.Config, log logger.Logger, cacheClient cache.Client, tokenSvc middleware.TokenService, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod))

	// Health check.
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"pong"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	autenticado := middleware.Autenticar(tokenSvc)
	todosPerfis := middleware.Autorizar(domain.PerfilAdmin, domain.PerfilPerito, domain.PerfilAssistente)
	adminEPerito := middleware.Autorizar(domain.PerfilAdmin, domain.PerfilPerito)
	somenteAdmin := middleware.Autorizar(domain.PerfilAdmin)

	r.Route("/api", func(r chi.Router) {
		// Cadastro e login ficam fora do gate de autenticação.
		r.Post("/usuarios", h.Usuario.Cadastrar)
		r.Post("/auth/login", h.Usuario.Login)

		r.Group(func(r chi.Router) {
			r.Use(autenticado)

			r.Route("/usuarios", func(r chi.Router) {
				r.With(todosPerfis).Get("/", h.Usuario.Listar)
				r.With(todosPerfis).Get("/tipo/{tipo_perfil}", h.Usuario.ListarPorTipoPerfil)
				r.With(todosPerfis).Get("/{id}", h.Usuario.ObterPorID)
				r.With(adminEPerito).Put("/{id}", h.Usuario.Atualizar)
				r.With(adminEPerito).Patch("/{id}/foto", h.Usuario.AtualizarFoto)
				r.With(somenteAdmin).Delete("/{id}", h.Usuario.Excluir)
			})

			r.Route("/casos", func(r chi.Router) {
				r.With(adminEPerito).Post("/", h.Caso.Criar)
				r.With(adminEPerito).Post("/com-evidencias", h.Caso.CriarComEvidencias)
				r.With(todosPerfis).Get("/", h.Caso.Listar)
				r.With(todosPerfis).Get("/status/{status}", h.Caso.ListarPorStatus)
				r.With(todosPerfis).Get("/responsavel/{id}/status/{status}", h.Caso.ListarPorResponsavelEStatus)
				r.With(todosPerfis).Get("/{id}", h.Caso.ObterPorID)
				r.With(adminEPerito).Put("/{id}", h.Caso.Atualizar)
				r.With(somenteAdmin).Delete("/{id}", h.Caso.Excluir)
			})

			r.Route("/evidencias", func(r chi.Router) {
				r.With(adminEPerito).Post("/", h.Evidencia.Criar)
				r.With(adminEPerito).Post("/multiplas", h.Evidencia.CriarMultiplas)
				r.With(todosPerfis).Get("/", h.Evidencia.Listar)
				r.With(todosPerfis).Get("/agrupadas", h.Evidencia.ListarAgrupadas)
				r.With(todosPerfis).Get("/caso/{id_caso}", h.Evidencia.ListarPorCaso)
				r.With(todosPerfis).Get("/{id}", h.Evidencia.ObterPorID)
				r.With(adminEPerito).Put("/{id}", h.Evidencia.Atualizar)
				r.With(somenteAdmin).Delete("/todas", h.Evidencia.ExcluirTodas)
				r.With(somenteAdmin).Delete("/{id}", h.Evidencia.Excluir)
			})
		})
	})

	return r
}
