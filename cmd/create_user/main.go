// Cria diretamente no banco uma conta já aprovada. Usado para o primeiro
// administrador, antes de existir alguém que possa aprovar registos.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	name := flag.String("name", "", "Nome completo do usuário (obrigatório)")
	email := flag.String("email", "", "Email de login do usuário (obrigatório)")
	password := flag.String("password", "", "Senha do usuário (obrigatório)")
	role := flag.String("role", "admin", "Cargo do usuário: 'admin' ou 'marketing'")

	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		log.Println("Erro: As flags -name, -email e -password são obrigatórias.")
		flag.Usage()
		os.Exit(1)
	}

	switch *role {
	case "admin", "marketing":
		// Cargo válido
	default:
		log.Fatalf("Erro: Cargo inválido '%s'. Use 'admin' ou 'marketing'.\n", *role)
	}

	err := godotenv.Load()
	if err != nil {
		log.Println("Aviso: Arquivo .env não encontrado. Usando variáveis de ambiente do sistema.")
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_NAME"),
	)

	conn, err := pgx.Connect(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco de dados: %v\n", err)
	}
	defer conn.Close(context.Background())

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Erro ao gerar hash da senha: %v\n", err)
	}

	sql := `INSERT INTO usuarios (nome, email, senha_hash, cargo, status) VALUES ($1, $2, $3, $4, 'aprovado')`
	_, err = conn.Exec(context.Background(), sql, *name, *email, string(hashedPassword), *role)
	if err != nil {
		log.Fatalf("Erro ao criar o usuário: %v\n", err)
	}

	fmt.Printf("Usuário '%s' (%s) criado e aprovado com sucesso.\n", *name, *email)
}
