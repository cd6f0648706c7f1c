// Package cache guarda por alguns minutos as linhas lidas da planilha,
// poupando a cota da API do Sheets nas leituras do display público.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"gerador-encartes/internal/models"
)

const (
	chaveOfertas = "encartes:ofertas"
	ttlOfertas   = 5 * time.Minute
)

// Cache envolve a ligação ao Redis. Todos os métodos falham em aberto:
// um Redis fora do ar nunca derruba uma leitura de ofertas.
type Cache struct {
	client *redis.Client
}

// NewCache liga ao Redis indicado por REDIS_ADDR. Devolve erro apenas
// quando o endereço está definido mas inalcançável; sem REDIS_ADDR a
// aplicação corre sem cache.
func NewCache() (*Cache, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR não está definido")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("não foi possível conectar ao Redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// GetOfertas devolve as ofertas em cache, ou (nil, false) em qualquer
// falha ou ausência.
func (c *Cache) GetOfertas() ([]models.Oferta, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := c.client.Get(ctx, chaveOfertas).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Aviso: falha ao ler o cache de ofertas: %v", err)
		}
		return nil, false
	}
	var ofertas []models.Oferta
	if err := json.Unmarshal(payload, &ofertas); err != nil {
		log.Printf("Aviso: cache de ofertas corrompido, a ignorar: %v", err)
		return nil, false
	}
	return ofertas, true
}

// SetOfertas grava as ofertas com TTL curto. Erros são apenas registados.
func (c *Cache) SetOfertas(ofertas []models.Oferta) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(ofertas)
	if err != nil {
		log.Printf("Aviso: falha ao serializar ofertas para o cache: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, chaveOfertas, payload, ttlOfertas).Err(); err != nil {
		log.Printf("Aviso: falha ao gravar o cache de ofertas: %v", err)
	}
}

// Invalidate remove a entrada de ofertas, usada após uma publicação.
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Del(ctx, chaveOfertas).Err(); err != nil {
		log.Printf("Aviso: falha ao invalidar o cache de ofertas: %v", err)
	}
}
