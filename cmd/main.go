package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"odontolegal/config"
	"odontolegal/internal/pkg/cache"
	"odontolegal/internal/pkg/database"
	"odontolegal/internal/pkg/logger"
	"odontolegal/internal/pkg/token"

	// Camadas da API para Injeção de Dependências
	"odontolegal/internal/api/caso"
	"odontolegal/internal/api/evidencia"
	"odontolegal/internal/api/router"
	"odontolegal/internal/api/usuario"
	"odontolegal/internal/repository/casorepo"
	"odontolegal/internal/repository/evidenciarepo"
	"odontolegal/internal/repository/usuariorepo"
	"odontolegal/internal/service/casoservice"
	"odontolegal/internal/service/evidenciaservice"
	"odontolegal/internal/service/usuarioservice"
)

// @title OdontoLegal API
// @version 1.0
// @description API de gestão de casos periciais de odontologia legal: usuários, casos e evidências.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	stdlog.Println("⚡ Inicializando serviço OdontoLegal...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se não existir, as variáveis essenciais podem vir do ambiente (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// Conexões de infraestrutura.
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// Injeção de Dependências: Repository -> Service -> Handler.
	usuarioRepo := usuariorepo.NewUsuarioRepository(db, cfg.DBTimeout, log)
	casoRepo := casorepo.NewCasoRepository(db, cacheClient, cfg.DBTimeout, log)
	evidenciaRepo := evidenciarepo.NewEvidenciaRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	usuarioSvc := usuarioservice.NewService(usuarioRepo, tokenSvc, log)
	casoSvc := casoservice.NewService(casoRepo, log)
	evidenciaSvc := evidenciaservice.NewService(evidenciaRepo, casoRepo, log)
	log.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Usuario:   usuario.NewHandler(usuarioSvc, log),
		Caso:      caso.NewHandler(casoSvc, log),
		Evidencia: evidencia.NewHandler(evidenciaSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	r := router.New(cfg, log, cacheClient, tokenSvc, handlers)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Execução e Graceful Shutdown.
	go func() {
		log.Info("Servidor OdontoLegal ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
