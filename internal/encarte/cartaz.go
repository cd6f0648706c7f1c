package encarte

import (
	"bytes"
	"fmt"
	"html/template"

	"gerador-encartes/internal/models"
)

// FormatarPreco devolve o preço no formato de exibição brasileiro,
// ex.: "R$ 12,99".
func FormatarPreco(preco, centavos int) string {
	return fmt.Sprintf("R$ %d,%02d", preco, centavos)
}

// TextoRodape devolve a frase do rodapé promocional de um produto, ou ""
// quando o produto não tem rodapé.
func TextoRodape(r *models.Rodape) string {
	if r == nil {
		return ""
	}
	switch r.Tipo {
	case models.RodapeAcimaDe:
		return fmt.Sprintf("Acima de %d unidades", r.Quantidade)
	case models.RodapeLimiteCliente:
		return fmt.Sprintf("Limite de %d por cliente", r.Quantidade)
	}
	return ""
}

// TextoUnidade devolve o sufixo de unidade exibido junto ao preço.
func TextoUnidade(unidade string) string {
	if unidade == models.UnidadeQuilo {
		return "kg"
	}
	return "un"
}

var tmplCartaz = template.Must(template.New("cartaz").Funcs(template.FuncMap{
	"preco":   FormatarPreco,
	"rodape":  TextoRodape,
	"unidade": TextoUnidade,
}).Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Cartaz de Ofertas</title>
<style>
  body { margin: 0; font-family: Arial, Helvetica, sans-serif; }
  .cartaz { width: {{.Dim.LarguraCanvas}}px; height: {{.Dim.AlturaCanvas}}px;
            background: #c8102e; color: #fff; overflow: hidden; }
  .cabecalho { height: 140px; text-align: center; padding-top: 20px; }
  .cabecalho h1 { margin: 0; font-size: 64px; letter-spacing: 2px; }
  .validade { font-size: 24px; color: #ffd100; }
  .grade { padding: 0 60px; }
  .linha { display: flex; justify-content: flex-start; }
  .celula { width: {{printf "%.2f" .Dim.LarguraCelula}}px;
            height: {{printf "%.2f" .Dim.AlturaCelula}}px;
            box-sizing: border-box; text-align: center; padding: 8px; }
  .celula img { width: {{.Dim.TamanhoImagem}}px; height: {{.Dim.TamanhoImagem}}px;
                object-fit: contain; background: #fff; border-radius: 8px; }
  .nome { font-size: 22px; font-weight: bold; margin: 6px 0 2px; }
  .preco { font-size: 34px; font-weight: bold; color: #ffd100; }
  .preco small { font-size: 18px; color: #fff; }
  .promo { display: inline-block; background: #ffd100; color: #c8102e;
           font-size: 16px; font-weight: bold; padding: 2px 10px;
           border-radius: 10px; }
  .rodape-produto { font-size: 14px; color: #ffe9a8; }
</style>
</head>
<body>
<div class="cartaz">
  <div class="cabecalho">
    <h1>OFERTAS DA SEMANA</h1>
    {{if .Validade}}<div class="validade">{{.Validade}}</div>{{end}}
  </div>
  <div class="grade">
  {{range .Linhas}}
    <div class="linha">
    {{range .}}
      <div class="celula">
      {{with .}}
        {{if .Imagem}}<img src="{{.Imagem}}" alt="{{.Nome}}">{{end}}
        <div class="nome">{{.Nome}}</div>
        {{if .Promo}}<span class="promo">OFERTA</span>{{end}}
        <div class="preco">{{preco .Preco .Centavos}} <small>/{{unidade .Unidade}}</small></div>
        {{with rodape .Rodape}}<div class="rodape-produto">{{.}}</div>{{end}}
      {{end}}
      </div>
    {{end}}
    </div>
  {{end}}
  </div>
</div>
</body>
</html>
`))

type cartazData struct {
	Dim      models.Dimensoes
	Linhas   [][]*models.Produto
	Validade string
}

// GerarCartazHTML monta o documento HTML autocontido de um cartaz a partir
// da configuração e da lista de produtos. Diferente da pré-visualização,
// as linhas totalmente vazias são omitidas do documento final.
func GerarCartazHTML(cfg models.ConfigGrade, produtos []models.Produto, validade string) (string, error) {
	todas := DistribuirProdutos(produtos, cfg.ProdutosPorLinha, cfg.NumLinhas)
	linhas := make([][]*models.Produto, 0, len(todas))
	for _, linha := range todas {
		if !LinhaVazia(linha) {
			linhas = append(linhas, linha)
		}
	}

	data := cartazData{
		Dim:      CalcularDimensoes(cfg),
		Linhas:   linhas,
		Validade: validade,
	}

	var buf bytes.Buffer
	if err := tmplCartaz.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("falha ao renderizar o cartaz: %w", err)
	}
	return buf.String(), nil
}
