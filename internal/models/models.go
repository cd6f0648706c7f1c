package models

import (
	"github.com/google/uuid"
)

// User representa a estrutura de um utilizador no sistema.
type User struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	Cargo     string
	SenhaHash string
	Status    string
}

// Cargos e estados de conta aceites.
const (
	CargoAdmin     = "admin"
	CargoMarketing = "marketing"

	StatusPendente = "pendente"
	StatusAprovado = "aprovado"
)

// Unidades de venda de um produto.
const (
	UnidadePeca  = "un"
	UnidadeQuilo = "kg"
)

// Tipos de rodapé promocional de um produto no cartaz.
const (
	RodapeAcimaDe       = "acima-de"
	RodapeLimiteCliente = "limite-cliente"
)

// Rodape descreve a linha promocional opcional de um produto
// ("acima de N unidades" ou "limite de N por cliente").
type Rodape struct {
	Tipo       string `json:"tipo"`
	Quantidade int    `json:"quantidade"`
}

// Produto é a entrada do motor de grade: um item do cartaz, consumido
// apenas por leitura e identificado pela posição na sequência.
type Produto struct {
	Nome     string  `json:"nome"`
	Imagem   string  `json:"imagem,omitempty"`
	Unidade  string  `json:"unidade"`
	Preco    int     `json:"preco"`
	Centavos int     `json:"centavos"`
	Promo    bool    `json:"promo"`
	Rodape   *Rodape `json:"rodape,omitempty"`
}

// Formatos de canvas suportados pelo gerador de cartazes.
const (
	FormatoQuadrado = "quadrado" // 1080x1080
	FormatoVertical = "vertical" // 1080x1920
)

// ConfigGrade é a configuração de layout de um cartaz. Os campos derivados
// (TotalProdutos, dimensões do canvas e TamanhoImagem) são sempre
// recalculados em conjunto por encarte.NovaConfigGrade; nunca definidos
// isoladamente.
type ConfigGrade struct {
	ProdutosPorLinha int    `json:"produtos_por_linha"`
	NumLinhas        int    `json:"num_linhas"`
	TotalProdutos    int    `json:"total_produtos"`
	Formato          string `json:"formato"`
	LarguraCanvas    int    `json:"largura_canvas"`
	AlturaCanvas     int    `json:"altura_canvas"`
	TamanhoImagem    int    `json:"tamanho_imagem"`
}

// Dimensoes reúne as medidas em pixels derivadas de uma ConfigGrade.
type Dimensoes struct {
	LarguraCanvas int     `json:"largura_canvas"`
	AlturaCanvas  int     `json:"altura_canvas"`
	LarguraCelula float64 `json:"largura_celula"`
	AlturaCelula  float64 `json:"altura_celula"`
	TamanhoImagem int     `json:"tamanho_imagem"`
}

// Oferta é um registo normalizado vindo da planilha: preços inteiros,
// centavos limitados a [0,99] e datas de vigência em texto livre.
type Oferta struct {
	Nome     string `json:"nome"`
	Imagem   string `json:"imagem"`
	Preco    int    `json:"preco"`
	Centavos int    `json:"centavos"`
	Promo    string `json:"promo"`
	Rodape   string `json:"rodape"`
	De       string `json:"de"`
	Ate      string `json:"ate"`
	Unidade  string `json:"unidade"`
}

// OfertasResponse é o envelope JSON devolvido por GET /api/ofertas.
// Quando não há ofertas vigentes, Message recebe exatamente o texto
// "SEM PRODUTOS PARA EXIBIR" — contrato com o frontend do display.
type OfertasResponse struct {
	Success bool     `json:"success"`
	Ofertas []Oferta `json:"offers"`
	Count   int      `json:"count"`
	Message string   `json:"message,omitempty"`
}

// PaginationData armazena informações para renderizar controlos de paginação.
type PaginationData struct {
	HasPrev, HasNext        bool
	PrevPage, NextPage      int
	CurrentPage, TotalPages int
	SearchQuery             string
}
