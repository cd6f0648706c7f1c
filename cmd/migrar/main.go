// Prepara o banco de dados da aplicação: cria a tabela de utilizadores
// usada pelo login e pelo fluxo de aprovação de contas.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const schemaUsuarios = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS usuarios (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	nome TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	senha_hash TEXT NOT NULL,
	cargo TEXT NOT NULL CHECK (cargo IN ('admin', 'marketing')),
	status TEXT NOT NULL DEFAULT 'pendente' CHECK (status IN ('pendente', 'aprovado')),
	criado_em TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_usuarios_status ON usuarios (status);
`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: Arquivo .env não encontrado. Usando variáveis de ambiente do sistema.")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_NAME"),
	)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco de dados: %v\n", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(context.Background(), schemaUsuarios); err != nil {
		log.Fatalf("Falha ao criar o esquema: %v\n", err)
	}

	fmt.Println("Esquema criado com sucesso.")
}
