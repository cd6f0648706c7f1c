package ofertas

import (
	"fmt"
	"strconv"
	"strings"

	"gerador-encartes/internal/models"
)

// Ordem das colunas da planilha de ofertas.
const (
	colunaNome = iota
	colunaImagem
	colunaPreco
	colunaCentavos
	colunaPromo
	colunaRodape
	colunaDe
	colunaAte
	colunaUnidade
)

// celulaTexto lê uma célula como texto, devolvendo "" quando a linha é
// curta ou a célula não é textual.
func celulaTexto(linha []interface{}, idx int) string {
	if idx >= len(linha) {
		return ""
	}
	switch v := linha[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// celulaInteiro lê uma célula como inteiro; qualquer coisa ilegível vira 0.
func celulaInteiro(linha []interface{}, idx int) int {
	s := celulaTexto(linha, idx)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// normalizarUnidade mapeia o texto livre da planilha para as unidades
// suportadas. Qualquer valor não reconhecido cai na peça ("un").
func normalizarUnidade(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kg", "quilo", "kilo":
		return models.UnidadeQuilo
	}
	return models.UnidadePeca
}

// ClampCentavos limita a fração de preço ao intervalo [0,99]. O clamp é
// aplicado em toda normalização, independentemente do filtro de vigência.
func ClampCentavos(centavos int) int {
	if centavos < 0 {
		return 0
	}
	if centavos > 99 {
		return 99
	}
	return centavos
}

// NormalizarOferta aplica os padrões de campo a uma oferta já tipada:
// centavos limitados e unidade reconhecida.
func NormalizarOferta(o models.Oferta) models.Oferta {
	o.Centavos = ClampCentavos(o.Centavos)
	o.Unidade = normalizarUnidade(o.Unidade)
	return o
}

// NormalizarLinha converte uma linha crua da planilha numa Oferta tipada.
// A função é total: linhas curtas, células vazias e valores ilegíveis
// degradam para os padrões de cada campo, nunca para um erro.
func NormalizarLinha(linha []interface{}) models.Oferta {
	return NormalizarOferta(models.Oferta{
		Nome:     celulaTexto(linha, colunaNome),
		Imagem:   celulaTexto(linha, colunaImagem),
		Preco:    celulaInteiro(linha, colunaPreco),
		Centavos: celulaInteiro(linha, colunaCentavos),
		Promo:    celulaTexto(linha, colunaPromo),
		Rodape:   celulaTexto(linha, colunaRodape),
		De:       celulaTexto(linha, colunaDe),
		Ate:      celulaTexto(linha, colunaAte),
		Unidade:  celulaTexto(linha, colunaUnidade),
	})
}

// NormalizarLinhas converte todas as linhas cruas, preservando a ordem.
func NormalizarLinhas(linhas [][]interface{}) []models.Oferta {
	ofertas := make([]models.Oferta, 0, len(linhas))
	for _, linha := range linhas {
		ofertas = append(ofertas, NormalizarLinha(linha))
	}
	return ofertas
}
