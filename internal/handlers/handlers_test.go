package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gerador-encartes/internal/encarte"
	"gerador-encartes/internal/models"
	"gerador-encartes/internal/ofertas"
	"gerador-encartes/internal/storage"
)

// --- Mock da camada de contas ---

type mockStorage struct{}

var _ storage.Store = (*mockStorage)(nil)

func (m *mockStorage) GetUserByEmail(email string) (*models.User, error) {
	contas := map[string]struct {
		cargo  string
		status string
	}{
		"admin@teste.com":     {models.CargoAdmin, models.StatusAprovado},
		"marketing@teste.com": {models.CargoMarketing, models.StatusAprovado},
		"pendente@teste.com":  {models.CargoMarketing, models.StatusPendente},
	}
	conta, ok := contas[email]
	if !ok {
		return nil, errors.New("utilizador não encontrado")
	}
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.DefaultCost)
	return &models.User{
		ID:        uuid.New(),
		Nome:      "Utilizador Teste",
		Email:     email,
		Cargo:     conta.cargo,
		SenhaHash: string(hashedPassword),
		Status:    conta.status,
	}, nil
}

func (m *mockStorage) AddUser(user models.User, password string) error { return nil }
func (m *mockStorage) ApproveUser(id string) error                     { return nil }
func (m *mockStorage) CountUsers() (int, error)                        { return 1, nil }
func (m *mockStorage) GetUsersPaginated(limit, offset int) ([]models.User, error) {
	return []models.User{}, nil
}
func (m *mockStorage) GetPendingUsers() ([]models.User, error) { return []models.User{}, nil }
func (m *mockStorage) UpdateUser(userID string, user models.User, newPassword string) error {
	return nil
}
func (m *mockStorage) DeleteUserByID(id string) error { return nil }

// --- Mock da planilha ---

type mockPlanilha struct {
	linhas     [][]interface{}
	err        error
	publicadas []models.Oferta
}

var _ storage.PlanilhaStore = (*mockPlanilha)(nil)

func (m *mockPlanilha) GetLinhasOfertas() ([][]interface{}, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.linhas, nil
}

func (m *mockPlanilha) PublicarOfertas(lista []models.Oferta) error {
	m.publicadas = lista
	return nil
}

func (m *mockPlanilha) AdicionarOferta(oferta models.Oferta) error {
	m.publicadas = append(m.publicadas, oferta)
	return nil
}

// --- Fim dos mocks ---

// Hora de referência fixa dos testes: 2024-06-15 10:00 em UTC-3.
var relogioTeste = ofertas.RelogioFixo{Hora: time.Date(2024, 6, 15, 13, 0, 0, 0, time.UTC)}

func setupTestRouter(planilha *mockPlanilha) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("encartes_session", store))

	h := NewHandler(&mockStorage{}, planilha, nil, relogioTeste)

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
	router.LoadHTMLGlob("../../web/templates/*.html")

	router.POST("/login", h.HandleLogin)
	router.GET("/api/ofertas", h.HandleGetOfertas)

	adminRoutes := router.Group("/admin")
	adminRoutes.Use(h.AuthRequired("admin"))
	{
		adminRoutes.GET("/dashboard", h.ShowAdminDashboard)
	}

	apiRoutes := router.Group("/api")
	apiRoutes.Use(h.AuthRequired("marketing", "admin"))
	{
		apiRoutes.POST("/ofertas", h.HandleAdicionarOferta)
		apiRoutes.POST("/ofertas/publicar", h.HandlePublicarOfertas)
		apiRoutes.POST("/cartaz", h.HandlePreviewCartaz)
		apiRoutes.POST("/cartaz/download", h.HandleDownloadCartaz)
	}

	return router
}

// loginAs é uma função auxiliar para simular um login e obter o cookie de sessão.
func loginAs(router *gin.Engine, email, password string) (*http.Cookie, error) {
	form := url.Values{}
	form.Add("email", email)
	form.Add("password", password)

	req, _ := http.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		return nil, errors.New("login falhou")
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		return nil, errors.New("nenhum cookie de sessão encontrado")
	}

	return cookies[0], nil
}

func postJSON(router *gin.Engine, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginHandler(t *testing.T) {
	router := setupTestRouter(&mockPlanilha{})

	t.Run("Deve fazer login com sucesso com credenciais válidas", func(t *testing.T) {
		cookie, err := loginAs(router, "admin@teste.com", "senha123")
		assert.NoError(t, err)
		assert.NotEmpty(t, cookie)
	})

	t.Run("Deve falhar o login com senha incorreta", func(t *testing.T) {
		_, err := loginAs(router, "admin@teste.com", "senha_errada")
		assert.Error(t, err)
	})

	t.Run("Deve recusar uma conta ainda não aprovada", func(t *testing.T) {
		_, err := loginAs(router, "pendente@teste.com", "senha123")
		assert.Error(t, err)
	})
}

func TestAdminDashboardAuth(t *testing.T) {
	router := setupTestRouter(&mockPlanilha{})

	t.Run("Deve redirecionar para o login se não estiver autenticado", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/admin/dashboard", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("API deve responder 401 sem autenticação", func(t *testing.T) {
		w := postJSON(router, "/api/cartaz", gin.H{}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetOfertas(t *testing.T) {
	t.Run("Deve filtrar as ofertas vencidas e manter a ordem", func(t *testing.T) {
		planilha := &mockPlanilha{linhas: [][]interface{}{
			{"Arroz", "", "24", "90", "", "", "2024-06-01", "2024-06-30", "un"},
			{"Vencida", "", "9", "99", "", "", "2024-01-01", "2024-01-31", "un"},
			{"Sem Data", "", "5", "0", "", "", "", "", "kg"},
			{"Data Ilegível", "", "3", "150", "", "", "amanhã", "depois", "un"},
		}}
		router := setupTestRouter(planilha)

		req, _ := http.NewRequest("GET", "/api/ofertas", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.OfertasResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.True(t, resp.Success)
		assert.Equal(t, 3, resp.Count)
		require.Len(t, resp.Ofertas, 3)
		assert.Equal(t, "Arroz", resp.Ofertas[0].Nome)
		assert.Equal(t, "Sem Data", resp.Ofertas[1].Nome)
		assert.Equal(t, "Data Ilegível", resp.Ofertas[2].Nome)
		assert.Equal(t, 99, resp.Ofertas[2].Centavos) // clamp aplicado na normalização
		assert.Empty(t, resp.Message)
	})

	t.Run("Deve devolver a mensagem literal quando não há ofertas vigentes", func(t *testing.T) {
		planilha := &mockPlanilha{linhas: [][]interface{}{
			{"Vencida", "", "9", "99", "", "", "2024-01-01", "2024-01-31", "un"},
		}}
		router := setupTestRouter(planilha)

		req, _ := http.NewRequest("GET", "/api/ofertas", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var resp models.OfertasResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 0, resp.Count)
		assert.Equal(t, "SEM PRODUTOS PARA EXIBIR", resp.Message)
	})

	t.Run("Erro de leitura deve degradar para lista vazia, nunca 5xx", func(t *testing.T) {
		planilha := &mockPlanilha{err: errors.New("quota excedida")}
		router := setupTestRouter(planilha)

		req, _ := http.NewRequest("GET", "/api/ofertas", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.OfertasResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, 0, resp.Count)
		assert.Equal(t, "SEM PRODUTOS PARA EXIBIR", resp.Message)
	})
}

func TestPreviewCartaz(t *testing.T) {
	router := setupTestRouter(&mockPlanilha{})
	sessionCookie, err := loginAs(router, "marketing@teste.com", "senha123")
	require.NoError(t, err)

	t.Run("Deve devolver a grade e as dimensões derivadas", func(t *testing.T) {
		w := postJSON(router, "/api/cartaz", gin.H{
			"produtos_por_linha": 2,
			"num_linhas":         2,
			"formato":            "quadrado",
			"produtos": []gin.H{
				{"nome": "Arroz", "preco": 24, "centavos": 90, "unidade": "un"},
				{"nome": "Feijão", "preco": 8, "centavos": 50, "unidade": "un"},
				{"nome": "Picanha", "preco": 59, "centavos": 99, "unidade": "kg"},
			},
		}, sessionCookie)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Config    models.ConfigGrade  `json:"config"`
			Dimensoes models.Dimensoes    `json:"dimensoes"`
			Linhas    [][]*models.Produto `json:"linhas"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, 4, resp.Config.TotalProdutos)
		assert.Equal(t, 264, resp.Dimensoes.TamanhoImagem)
		require.Len(t, resp.Linhas, 2)
		// Linha parcial: um produto centralizado em duas colunas fica à esquerda.
		assert.NotNil(t, resp.Linhas[1][0])
		assert.Nil(t, resp.Linhas[1][1])
	})

	t.Run("Deve rejeitar configurações fora do domínio", func(t *testing.T) {
		w := postJSON(router, "/api/cartaz", gin.H{
			"produtos_por_linha": 5,
			"num_linhas":         2,
			"formato":            "quadrado",
		}, sessionCookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDownloadCartaz(t *testing.T) {
	router := setupTestRouter(&mockPlanilha{})
	sessionCookie, err := loginAs(router, "marketing@teste.com", "senha123")
	require.NoError(t, err)

	w := postJSON(router, "/api/cartaz/download", gin.H{
		"produtos_por_linha": 2,
		"num_linhas":         1,
		"formato":            "vertical",
		"validade":           "Válido até 30/06",
		"produtos": []gin.H{
			{"nome": "Arroz", "preco": 24, "centavos": 90, "unidade": "un"},
		},
	}, sessionCookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cartaz.html")
	assert.Contains(t, w.Body.String(), "Arroz")
	assert.Contains(t, w.Body.String(), "Válido até 30/06")
}

func TestPublicarOfertas(t *testing.T) {
	planilha := &mockPlanilha{}
	router := setupTestRouter(planilha)
	sessionCookie, err := loginAs(router, "marketing@teste.com", "senha123")
	require.NoError(t, err)

	w := postJSON(router, "/api/ofertas/publicar", gin.H{
		"offers": []gin.H{
			{"nome": "Arroz", "preco": 24, "centavos": 150, "unidade": "caixa"},
			{"nome": "Picanha", "preco": 59, "centavos": 99, "unidade": "kg"},
		},
	}, sessionCookie)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, planilha.publicadas, 2)
	assert.Equal(t, 99, planilha.publicadas[0].Centavos)              // clamp
	assert.Equal(t, models.UnidadePeca, planilha.publicadas[0].Unidade) // padrão
	assert.Equal(t, models.UnidadeQuilo, planilha.publicadas[1].Unidade)
}
