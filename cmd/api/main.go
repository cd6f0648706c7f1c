package main

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gerador-encartes/internal/cache"
	"gerador-encartes/internal/encarte"
	"gerador-encartes/internal/handlers"
	"gerador-encartes/internal/ofertas"
	"gerador-encartes/internal/storage"
)

func loadEnv() {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		log.Fatal("Não foi possível encontrar o caminho do ficheiro main.")
	}
	dir := filepath.Dir(filename)

	// Sobe na árvore de diretórios até encontrar o go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			log.Fatal("Não foi possível encontrar a raiz do projeto (go.mod).")
		}
		dir = parent
	}

	envPath := filepath.Join(dir, "config.env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Aviso: Não foi possível carregar o ficheiro config.env de %s: %v", envPath, err)
	}
}

func main() {
	loadEnv()

	storageLayer, err := storage.NewStorage()
	if err != nil {
		log.Fatalf("Falha ao inicializar a camada de armazenamento: %v", err)
	}
	defer storageLayer.Dbpool.Close()

	planilha, err := storage.NewPlanilha()
	if err != nil {
		log.Fatalf("Falha ao inicializar o cliente da planilha: %v", err)
	}

	// Sem REDIS_ADDR a aplicação corre sem cache; só a leitura de ofertas
	// fica mais cara.
	ofertasCache, err := cache.NewCache()
	if err != nil {
		log.Printf("Aviso: a correr sem cache de ofertas: %v", err)
		ofertasCache = nil
	}

	h := handlers.NewHandler(storageLayer, planilha, ofertasCache, ofertas.RelogioReal{})

	router := gin.Default()
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "super-secret-key"
	}
	store := cookie.NewStore([]byte(secret))
	router.Use(sessions.Sessions("encartes_session", store))
	router.StaticFS("/static", http.Dir("web/static"))

	router.SetFuncMap(map[string]interface{}{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, errors.New("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, errors.New("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"json": func(v interface{}) (template.JS, error) {
			a, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return template.JS(a), nil
		},
		"preco": encarte.FormatarPreco,
	})
	router.LoadHTMLGlob("web/templates/*.html")

	// --- Rotas Públicas ---
	router.GET("/login", h.ShowLoginPage)
	router.POST("/login", h.HandleLogin)
	router.GET("/logout", h.HandleLogout)
	router.GET("/registar", h.ShowRegisterPage)
	router.POST("/registar", h.HandleRegister)
	router.GET("/api/ofertas", h.HandleGetOfertas)

	// --- Rotas Protegidas ---
	geradorRoutes := router.Group("/gerador")
	geradorRoutes.Use(h.AuthRequired("marketing", "admin"))
	{
		geradorRoutes.GET("", h.ShowGeradorPage)
		geradorRoutes.GET("/cartaz", h.ShowCartazPage)
	}

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(h.AuthRequired("admin"))
	{
		adminRoutes.GET("/dashboard", h.ShowAdminDashboard)
		adminRoutes.POST("/users/add", h.HandleAddUser)
		adminRoutes.POST("/users/approve/:id", h.HandleApproveUser)
		adminRoutes.POST("/users/delete/:id", h.HandleDeleteUser)
	}

	apiRoutes := router.Group("/api")
	apiRoutes.Use(h.AuthRequired("marketing", "admin"))
	{
		apiRoutes.POST("/ofertas", h.HandleAdicionarOferta)
		apiRoutes.POST("/ofertas/publicar", h.HandlePublicarOfertas)
		apiRoutes.POST("/cartaz", h.HandlePreviewCartaz)
		apiRoutes.POST("/cartaz/download", h.HandleDownloadCartaz)
	}

	// Redirecionamento principal
	router.GET("/", func(c *gin.Context) {
		session := sessions.Default(c)
		role, ok := session.Get("userRole").(string)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			return
		}
		switch role {
		case "admin":
			c.Redirect(http.StatusFound, "/admin/dashboard")
		case "marketing":
			c.Redirect(http.StatusFound, "/gerador")
		default:
			c.Redirect(http.StatusFound, "/login")
		}
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Servidor iniciado em http://localhost:%s", port)
	router.Run(":" + port)
}
