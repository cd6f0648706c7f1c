// Package ofertas normaliza linhas cruas da planilha em registos de oferta
// e decide quais ofertas estão vigentes. A política é permissiva: qualquer
// dado ambíguo resulta em exibir a oferta, porque esconder uma oferta
// válida é pior do que mostrar uma vencida.
package ofertas

import (
	"strings"
	"time"

	"gerador-encartes/internal/models"
)

// Formatos de data aceites nos campos "de" e "ate" da planilha.
const (
	layoutISO        = "2006-01-02"
	layoutBrasileiro = "02/01/2006"
)

// ParseData interpreta um campo de data em texto livre. O segundo retorno
// indica sucesso; a falha de parse não é um erro, é um ramo que o chamador
// resolve incluindo a oferta.
func ParseData(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(layoutISO, s, fusoBrasilia); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(layoutBrasileiro, s, fusoBrasilia); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// inicioDoDia normaliza uma data para 00:00:00.000 do seu dia.
func inicioDoDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, fusoBrasilia)
}

// fimDoDia normaliza uma data para 23:59:59.999 do seu dia.
func fimDoDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, fusoBrasilia)
}

// Vigente decide se uma única oferta deve ser exibida na hora de
// referência. Campos de data vazios ou ilegíveis incluem a oferta.
func Vigente(de, ate string, referencia time.Time) bool {
	if strings.TrimSpace(de) == "" || strings.TrimSpace(ate) == "" {
		return true
	}
	inicio, okInicio := ParseData(de)
	fim, okFim := ParseData(ate)
	if !okInicio || !okFim {
		return true
	}
	inicio = inicioDoDia(inicio)
	fim = fimDoDia(fim)
	return !referencia.Before(inicio) && !referencia.After(fim)
}

// FiltrarVigentes devolve, na ordem de entrada, as ofertas vigentes na hora
// de referência. Nunca devolve erro: o pior resultado é uma lista vazia.
func FiltrarVigentes(lista []models.Oferta, referencia time.Time) []models.Oferta {
	vigentes := make([]models.Oferta, 0, len(lista))
	for _, oferta := range lista {
		if Vigente(oferta.De, oferta.Ate, referencia) {
			vigentes = append(vigentes, oferta)
		}
	}
	return vigentes
}
