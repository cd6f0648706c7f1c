package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"gerador-encartes/internal/models"
)

// PlanilhaStore define as operações sobre a planilha de ofertas que
// alimenta o display público.
type PlanilhaStore interface {
	GetLinhasOfertas() ([][]interface{}, error)
	PublicarOfertas(ofertas []models.Oferta) error
	AdicionarOferta(oferta models.Oferta) error
}

// Tentativas e pausa do retry em volta de cada chamada à API do Sheets.
// O retry pertence a esta camada de integração; o núcleo puro nunca o vê.
const (
	tentativasPlanilha   = 3
	pausaEntreTentativas = 500 * time.Millisecond
)

// Planilha implementa PlanilhaStore sobre a API de valores do Google Sheets.
type Planilha struct {
	service       *sheets.Service
	spreadsheetID string
	intervalo     string
}

// NewPlanilha cria o cliente do Sheets a partir das variáveis de ambiente
// SHEETS_SPREADSHEET_ID, SHEETS_RANGE e GOOGLE_APPLICATION_CREDENTIALS.
func NewPlanilha() (*Planilha, error) {
	spreadsheetID := os.Getenv("SHEETS_SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("SHEETS_SPREADSHEET_ID não está definido")
	}
	intervalo := os.Getenv("SHEETS_RANGE")
	if intervalo == "" {
		intervalo = "Ofertas!A2:I"
	}

	var opts []option.ClientOption
	if cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); cred != "" {
		opts = append(opts, option.WithCredentialsFile(cred))
	}
	service, err := sheets.NewService(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("não foi possível criar o cliente do Sheets: %w", err)
	}
	return &Planilha{
		service:       service,
		spreadsheetID: spreadsheetID,
		intervalo:     intervalo,
	}, nil
}

// comRetry executa fn até tentativasPlanilha vezes com pausa fixa entre
// tentativas, devolvendo o último erro.
func comRetry(operacao string, fn func() error) error {
	var err error
	for tentativa := 1; tentativa <= tentativasPlanilha; tentativa++ {
		if err = fn(); err == nil {
			return nil
		}
		log.Printf("Aviso: %s falhou (tentativa %d/%d): %v", operacao, tentativa, tentativasPlanilha, err)
		if tentativa < tentativasPlanilha {
			time.Sleep(pausaEntreTentativas)
		}
	}
	return fmt.Errorf("%s: %w", operacao, err)
}

// GetLinhasOfertas lê as linhas cruas do intervalo de ofertas.
func (p *Planilha) GetLinhasOfertas() ([][]interface{}, error) {
	var valores [][]interface{}
	err := comRetry("leitura da planilha", func() error {
		resp, err := p.service.Spreadsheets.Values.
			Get(p.spreadsheetID, p.intervalo).
			Context(context.Background()).Do()
		if err != nil {
			return err
		}
		valores = resp.Values
		return nil
	})
	if err != nil {
		return nil, err
	}
	return valores, nil
}

// ofertaParaLinha serializa uma oferta na ordem de colunas da planilha
// (a mesma que ofertas.NormalizarLinha lê).
func ofertaParaLinha(o models.Oferta) []interface{} {
	return []interface{}{
		o.Nome, o.Imagem, o.Preco, o.Centavos,
		o.Promo, o.Rodape, o.De, o.Ate, o.Unidade,
	}
}

// PublicarOfertas substitui o conteúdo do intervalo pelas ofertas dadas:
// limpa e regrava numa única publicação semanal.
func (p *Planilha) PublicarOfertas(ofertas []models.Oferta) error {
	err := comRetry("limpeza da planilha", func() error {
		_, err := p.service.Spreadsheets.Values.
			Clear(p.spreadsheetID, p.intervalo, &sheets.ClearValuesRequest{}).
			Context(context.Background()).Do()
		return err
	})
	if err != nil {
		return err
	}

	if len(ofertas) == 0 {
		return nil
	}

	valores := make([][]interface{}, 0, len(ofertas))
	for _, o := range ofertas {
		valores = append(valores, ofertaParaLinha(o))
	}
	return comRetry("escrita na planilha", func() error {
		_, err := p.service.Spreadsheets.Values.
			Update(p.spreadsheetID, p.intervalo, &sheets.ValueRange{Values: valores}).
			ValueInputOption("RAW").
			Context(context.Background()).Do()
		return err
	})
}

// AdicionarOferta acrescenta uma única oferta ao fim da planilha.
func (p *Planilha) AdicionarOferta(oferta models.Oferta) error {
	return comRetry("inclusão na planilha", func() error {
		_, err := p.service.Spreadsheets.Values.
			Append(p.spreadsheetID, p.intervalo, &sheets.ValueRange{
				Values: [][]interface{}{ofertaParaLinha(oferta)},
			}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(context.Background()).Do()
		return err
	})
}
