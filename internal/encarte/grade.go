// Package encarte contém o motor de distribuição em grade e o gerador de
// cartazes promocionais. As funções são puras: recebem a configuração e a
// lista de produtos e devolvem o layout, sem estado entre chamadas.
package encarte

import (
	"math"

	"gerador-encartes/internal/models"
)

// Margens fixas do canvas: 120px horizontais e 200px verticais reservados
// para o cabeçalho e o rodapé do cartaz.
const (
	margemHorizontal = 120
	margemVertical   = 200
)

// fatorImagem é a fração da menor dimensão da célula ocupada pela imagem.
const fatorImagem = 0.6

// dimensoesFormato devolve o par fixo de pixels de cada formato de canvas.
// Formatos desconhecidos caem no quadrado.
func dimensoesFormato(formato string) (largura, altura int) {
	if formato == models.FormatoVertical {
		return 1080, 1920
	}
	return 1080, 1080
}

// NovaConfigGrade monta uma ConfigGrade com todos os campos derivados
// recalculados. É o único caminho para criar ou alterar uma configuração:
// qualquer mudança de porLinha, numLinhas ou formato passa por aqui de novo.
func NovaConfigGrade(porLinha, numLinhas int, formato string) models.ConfigGrade {
	largura, altura := dimensoesFormato(formato)
	dim := calcularDimensoes(porLinha, numLinhas, largura, altura)
	return models.ConfigGrade{
		ProdutosPorLinha: porLinha,
		NumLinhas:        numLinhas,
		TotalProdutos:    porLinha * numLinhas,
		Formato:          formato,
		LarguraCanvas:    largura,
		AlturaCanvas:     altura,
		TamanhoImagem:    dim.TamanhoImagem,
	}
}

// CalcularDimensoes deriva as medidas de célula e de imagem de uma
// configuração. Configurações degeneradas apenas produzem imagens pequenas;
// não há caminho de erro.
func CalcularDimensoes(cfg models.ConfigGrade) models.Dimensoes {
	largura, altura := dimensoesFormato(cfg.Formato)
	return calcularDimensoes(cfg.ProdutosPorLinha, cfg.NumLinhas, largura, altura)
}

func calcularDimensoes(porLinha, numLinhas, largura, altura int) models.Dimensoes {
	larguraUtil := float64(largura - margemHorizontal)
	alturaUtil := float64(altura - margemVertical)
	larguraCelula := larguraUtil / float64(porLinha)
	alturaCelula := alturaUtil / float64(numLinhas)
	imagem := int(math.Round(fatorImagem * math.Min(larguraCelula, alturaCelula)))
	return models.Dimensoes{
		LarguraCanvas: largura,
		AlturaCanvas:  altura,
		LarguraCelula: larguraCelula,
		AlturaCelula:  alturaCelula,
		TamanhoImagem: imagem,
	}
}

// DistribuirProdutos coloca os produtos numa grade de numLinhas x porLinha:
// primeiro as linhas completas, na ordem de entrada, depois uma única linha
// parcial com os restantes centralizados. Células vazias são nil. Linhas não
// usadas saem totalmente vazias (a pré-visualização mostra-as; o gerador de
// cartaz omite-as). Produtos além da capacidade são descartados em silêncio.
func DistribuirProdutos(produtos []models.Produto, porLinha, numLinhas int) [][]*models.Produto {
	linhas := make([][]*models.Produto, 0, numLinhas+1)

	linhasCompletas := len(produtos) / porLinha
	restantes := len(produtos) % porLinha

	cheias := linhasCompletas
	if cheias > numLinhas {
		cheias = numLinhas
	}
	for i := 0; i < cheias; i++ {
		linha := make([]*models.Produto, porLinha)
		for j := 0; j < porLinha; j++ {
			linha[j] = &produtos[i*porLinha+j]
		}
		linhas = append(linhas, linha)
	}

	if restantes > 0 && linhasCompletas < numLinhas {
		// O padding esquerdo usa divisão inteira: quando a sobra de
		// células é ímpar, a célula extra fica à direita.
		esquerda := (porLinha - restantes) / 2
		linha := make([]*models.Produto, porLinha)
		for j := 0; j < restantes; j++ {
			linha[esquerda+j] = &produtos[linhasCompletas*porLinha+j]
		}
		linhas = append(linhas, linha)
	}

	for len(linhas) < numLinhas {
		linhas = append(linhas, make([]*models.Produto, porLinha))
	}

	return linhas
}

// LinhaVazia informa se todas as células de uma linha estão sem produto.
func LinhaVazia(linha []*models.Produto) bool {
	for _, celula := range linha {
		if celula != nil {
			return false
		}
	}
	return true
}
