package handlers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"gerador-encartes/internal/cache"
	"gerador-encartes/internal/encarte"
	"gerador-encartes/internal/models"
	"gerador-encartes/internal/ofertas"
	"gerador-encartes/internal/storage"
)

const PageLimit = 10

// MensagemSemProdutos é o texto devolvido pela API quando não há ofertas
// vigentes. É um contrato literal com o frontend do display; não alterar.
const MensagemSemProdutos = "SEM PRODUTOS PARA EXIBIR"

type Handler struct {
	Storage  storage.Store
	Planilha storage.PlanilhaStore
	Cache    *cache.Cache
	Relogio  ofertas.Relogio
}

func NewHandler(s storage.Store, p storage.PlanilhaStore, c *cache.Cache, r ofertas.Relogio) *Handler {
	return &Handler{Storage: s, Planilha: p, Cache: c, Relogio: r}
}

// getFlashes lê e apaga as mensagens flash da sessão.
func getFlashes(c *gin.Context) gin.H {
	session := sessions.Default(c)
	successFlashes := session.Flashes("success")
	errorFlashes := session.Flashes("error")
	session.Save() // Salva a sessão para limpar as flashes

	data := gin.H{}
	if len(successFlashes) > 0 {
		data["success"] = successFlashes[0]
	}
	if len(errorFlashes) > 0 {
		data["error"] = errorFlashes[0]
	}
	return data
}

func (h *Handler) AuthRequired(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userRole, ok := session.Get("userRole").(string)
		isAPIRequest := strings.HasPrefix(c.Request.URL.Path, "/api/")

		if !ok {
			if isAPIRequest {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Não autorizado"})
			} else {
				c.Redirect(http.StatusFound, "/login")
			}
			c.Abort()
			return
		}

		hasPermission := false
		for _, role := range requiredRoles {
			if userRole == role {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			log.Printf("Acesso negado para o utilizador com cargo '%s'. Rota requer um dos seguintes cargos: %v", userRole, requiredRoles)
			if isAPIRequest {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
			} else {
				c.HTML(http.StatusForbidden, "error.html", gin.H{
					"title":        "Acesso Negado",
					"StatusCode":   http.StatusForbidden,
					"ErrorMessage": "Acesso Negado",
				})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// --- Autenticação e contas ---

func (h *Handler) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"title": "Login"})
}

func (h *Handler) HandleLogin(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	user, err := h.Storage.GetUserByEmail(email)
	if err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"error": "Email ou senha inválidos."})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(password)); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"error": "Email ou senha inválidos."})
		return
	}
	if user.Status != models.StatusAprovado {
		c.HTML(http.StatusForbidden, "login.html", gin.H{"error": "A sua conta ainda não foi aprovada por um administrador."})
		return
	}

	session := sessions.Default(c)
	session.Set("userID", user.ID.String())
	session.Set("userName", user.Nome)
	session.Set("userRole", user.Cargo)
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) HandleLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) ShowRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "registar.html", gin.H{"title": "Criar Conta"})
}

// HandleRegister cria uma conta pendente; o acesso só é libertado depois
// de um administrador aprovar.
func (h *Handler) HandleRegister(c *gin.Context) {
	user := models.User{
		Nome:   c.PostForm("name"),
		Email:  c.PostForm("email"),
		Cargo:  models.CargoMarketing,
		Status: models.StatusPendente,
	}
	password := c.PostForm("password")

	if user.Nome == "" || user.Email == "" || password == "" {
		c.HTML(http.StatusBadRequest, "registar.html", gin.H{"error": "Preencha nome, email e senha."})
		return
	}

	if err := h.Storage.AddUser(user, password); err != nil {
		log.Printf("Erro ao registar utilizador: %v", err)
		msg := "Falha ao criar a conta."
		if errors.Is(err, storage.ErrEmailJaCadastrado) {
			msg = "Este email já está cadastrado."
		}
		c.HTML(http.StatusBadRequest, "registar.html", gin.H{"error": msg})
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"title":   "Login",
		"success": "Conta criada! Aguarde a aprovação de um administrador.",
	})
}

// --- Painel do administrador ---

func (h *Handler) ShowAdminDashboard(c *gin.Context) {
	session := sessions.Default(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	totalUsers, _ := h.Storage.CountUsers()
	users, _ := h.Storage.GetUsersPaginated(PageLimit, (page-1)*PageLimit)
	pendentes, _ := h.Storage.GetPendingUsers()
	totalPages := int(math.Ceil(float64(totalUsers) / float64(PageLimit)))

	data := getFlashes(c)
	data["title"] = "Painel do Administrador"
	data["users"] = users
	data["pendentes"] = pendentes
	data["UserRole"] = session.Get("userRole")
	data["UserName"] = session.Get("userName")
	data["ActivePage"] = "dashboard"
	data["Pagination"] = models.PaginationData{
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
	c.HTML(http.StatusOK, "admin_dashboard.html", data)
}

func (h *Handler) HandleAddUser(c *gin.Context) {
	session := sessions.Default(c)
	user := models.User{
		Nome:   c.PostForm("name"),
		Email:  c.PostForm("email"),
		Cargo:  c.PostForm("role"),
		Status: models.StatusAprovado,
	}
	password := c.PostForm("password")

	err := h.Storage.AddUser(user, password)
	if err != nil {
		log.Printf("Erro ao adicionar utilizador: %v", err)
		session.AddFlash(fmt.Sprintf("Falha ao adicionar utilizador: %v", err), "error")
	} else {
		session.AddFlash("Utilizador adicionado com sucesso!", "success")
	}
	session.Save()
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h *Handler) HandleApproveUser(c *gin.Context) {
	session := sessions.Default(c)
	err := h.Storage.ApproveUser(c.Param("id"))
	if err != nil {
		log.Printf("Erro ao aprovar utilizador: %v", err)
		session.AddFlash(fmt.Sprintf("Falha ao aprovar utilizador: %v", err), "error")
	} else {
		session.AddFlash("Utilizador aprovado com sucesso!", "success")
	}
	session.Save()
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (h *Handler) HandleDeleteUser(c *gin.Context) {
	session := sessions.Default(c)
	err := h.Storage.DeleteUserByID(c.Param("id"))
	if err != nil {
		log.Printf("Erro ao apagar utilizador: %v", err)
		session.AddFlash(fmt.Sprintf("Falha ao apagar utilizador: %v", err), "error")
	} else {
		session.AddFlash("Utilizador removido com sucesso!", "success")
	}
	session.Save()
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

// --- Páginas do gerador ---

func (h *Handler) ShowGeradorPage(c *gin.Context) {
	session := sessions.Default(c)
	data := getFlashes(c)
	data["title"] = "Gerador de Encartes"
	data["UserRole"] = session.Get("userRole")
	data["UserName"] = session.Get("userName")
	data["ActivePage"] = "gerador"
	c.HTML(http.StatusOK, "gerador.html", data)
}

func (h *Handler) ShowCartazPage(c *gin.Context) {
	session := sessions.Default(c)
	data := getFlashes(c)
	data["title"] = "Gerador de Cartaz"
	data["UserRole"] = session.Get("userRole")
	data["UserName"] = session.Get("userName")
	data["ActivePage"] = "cartaz"
	data["ConfigPadrao"] = encarte.NovaConfigGrade(3, 2, models.FormatoQuadrado)
	c.HTML(http.StatusOK, "cartaz.html", data)
}

// --- API de ofertas ---

// buscarOfertas lê as ofertas normalizadas, preferindo o cache.
func (h *Handler) buscarOfertas() ([]models.Oferta, error) {
	if lista, ok := h.Cache.GetOfertas(); ok {
		return lista, nil
	}
	linhas, err := h.Planilha.GetLinhasOfertas()
	if err != nil {
		return nil, err
	}
	lista := ofertas.NormalizarLinhas(linhas)
	h.Cache.SetOfertas(lista)
	return lista, nil
}

// HandleGetOfertas é a rota pública consumida pelo display rotativo.
// Nunca devolve 5xx: um erro de leitura degrada para uma lista vazia.
func (h *Handler) HandleGetOfertas(c *gin.Context) {
	lista, err := h.buscarOfertas()
	if err != nil {
		log.Printf("Erro ao ler as ofertas da planilha: %v", err)
		c.JSON(http.StatusOK, models.OfertasResponse{
			Success: false,
			Ofertas: []models.Oferta{},
			Count:   0,
			Message: MensagemSemProdutos,
		})
		return
	}

	referencia := ofertas.AgoraBrasilia(h.Relogio)
	vigentes := ofertas.FiltrarVigentes(lista, referencia)

	resp := models.OfertasResponse{
		Success: true,
		Ofertas: vigentes,
		Count:   len(vigentes),
	}
	if len(vigentes) == 0 {
		resp.Message = MensagemSemProdutos
	}
	c.JSON(http.StatusOK, resp)
}

// HandlePublicarOfertas substitui a planilha inteira pelas ofertas
// submetidas no formulário semanal.
func (h *Handler) HandlePublicarOfertas(c *gin.Context) {
	var req struct {
		Ofertas []models.Oferta `json:"offers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados das ofertas inválidos."})
		return
	}

	lista := make([]models.Oferta, 0, len(req.Ofertas))
	for _, o := range req.Ofertas {
		lista = append(lista, ofertas.NormalizarOferta(o))
	}

	if err := h.Planilha.PublicarOfertas(lista); err != nil {
		log.Printf("Erro ao publicar ofertas: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao publicar as ofertas na planilha."})
		return
	}
	h.Cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(lista)})
}

// HandleAdicionarOferta acrescenta uma única oferta, usada pelo formulário
// de produto avulso.
func (h *Handler) HandleAdicionarOferta(c *gin.Context) {
	var oferta models.Oferta
	if err := c.ShouldBindJSON(&oferta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados da oferta inválidos."})
		return
	}

	if err := h.Planilha.AdicionarOferta(ofertas.NormalizarOferta(oferta)); err != nil {
		log.Printf("Erro ao adicionar oferta: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao adicionar a oferta à planilha."})
		return
	}
	h.Cache.Invalidate()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- API do cartaz ---

type cartazRequest struct {
	ProdutosPorLinha int              `json:"produtos_por_linha"`
	NumLinhas        int              `json:"num_linhas"`
	Formato          string           `json:"formato"`
	Validade         string           `json:"validade"`
	Produtos         []models.Produto `json:"produtos"`
}

// validarGrade confere o domínio declarado da configuração. Fora dele a
// chamada é um erro do cliente, não um caso degradado.
func validarGrade(req cartazRequest) error {
	if req.ProdutosPorLinha < 1 || req.ProdutosPorLinha > 4 {
		return fmt.Errorf("produtos_por_linha deve estar entre 1 e 4")
	}
	if req.NumLinhas < 1 || req.NumLinhas > 3 {
		return fmt.Errorf("num_linhas deve estar entre 1 e 3")
	}
	return nil
}

// HandlePreviewCartaz devolve a grade distribuída (com células vazias) e
// as dimensões derivadas, consumidas pela pré-visualização.
func (h *Handler) HandlePreviewCartaz(c *gin.Context) {
	var req cartazRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados do cartaz inválidos."})
		return
	}
	if err := validarGrade(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := encarte.NovaConfigGrade(req.ProdutosPorLinha, req.NumLinhas, req.Formato)
	c.JSON(http.StatusOK, gin.H{
		"config":    cfg,
		"dimensoes": encarte.CalcularDimensoes(cfg),
		"linhas":    encarte.DistribuirProdutos(req.Produtos, cfg.ProdutosPorLinha, cfg.NumLinhas),
	})
}

// HandleDownloadCartaz renderiza o cartaz e devolve o HTML como anexo.
func (h *Handler) HandleDownloadCartaz(c *gin.Context) {
	var req cartazRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados do cartaz inválidos."})
		return
	}
	if err := validarGrade(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := encarte.NovaConfigGrade(req.ProdutosPorLinha, req.NumLinhas, req.Formato)
	html, err := encarte.GerarCartazHTML(cfg, req.Produtos, req.Validade)
	if err != nil {
		log.Printf("Erro ao gerar o cartaz: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao gerar o cartaz."})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="cartaz.html"`)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
