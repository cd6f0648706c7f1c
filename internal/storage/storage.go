package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"gerador-encartes/internal/models"
)

// Store define as operações de conta de utilizador usadas pelos handlers.
type Store interface {
	GetUserByEmail(email string) (*models.User, error)
	AddUser(user models.User, password string) error
	ApproveUser(id string) error
	CountUsers() (int, error)
	GetUsersPaginated(limit, offset int) ([]models.User, error)
	GetPendingUsers() ([]models.User, error)
	UpdateUser(userID string, user models.User, newPassword string) error
	DeleteUserByID(id string) error
}

// ErrEmailJaCadastrado é devolvido quando o email de registo já existe.
var ErrEmailJaCadastrado = errors.New("este email já está cadastrado")

type Storage struct {
	Dbpool *pgxpool.Pool
}

func NewStorage() (*Storage, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Aviso: Ficheiro .env não encontrado.")
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_HOST"), os.Getenv("DB_NAME"))
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("não foi possível conectar ao banco de dados: %w", err)
	}
	return &Storage{Dbpool: pool}, nil
}

func (s *Storage) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	sql := `SELECT id, nome, email, senha_hash, cargo, status FROM usuarios WHERE email = $1`
	err := s.Dbpool.QueryRow(context.Background(), sql, email).
		Scan(&user.ID, &user.Nome, &user.Email, &user.SenhaHash, &user.Cargo, &user.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("utilizador não encontrado")
		}
		return nil, err
	}
	return &user, nil
}

func (s *Storage) AddUser(user models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("erro ao gerar hash da senha: %w", err)
	}
	sql := `INSERT INTO usuarios (nome, email, senha_hash, cargo, status) VALUES ($1, $2, $3, $4, $5)`
	_, err = s.Dbpool.Exec(context.Background(), sql,
		user.Nome, user.Email, string(hashedPassword), user.Cargo, user.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailJaCadastrado
		}
		return err
	}
	return nil
}

func (s *Storage) ApproveUser(id string) error {
	sql := `UPDATE usuarios SET status = $1 WHERE id = $2`
	cmdTag, err := s.Dbpool.Exec(context.Background(), sql, models.StatusAprovado, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return errors.New("nenhum utilizador foi aprovado (ID não encontrado?)")
	}
	return nil
}

func (s *Storage) CountUsers() (int, error) {
	var count int
	err := s.Dbpool.QueryRow(context.Background(), "SELECT COUNT(*) FROM usuarios").Scan(&count)
	return count, err
}

func (s *Storage) GetUsersPaginated(limit, offset int) ([]models.User, error) {
	var users []models.User
	sql := `SELECT id, nome, email, cargo, status FROM usuarios ORDER BY nome LIMIT $1 OFFSET $2`
	rows, err := s.Dbpool.Query(context.Background(), sql, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.Cargo, &u.Status); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Storage) GetPendingUsers() ([]models.User, error) {
	var users []models.User
	sql := `SELECT id, nome, email, cargo, status FROM usuarios WHERE status = $1 ORDER BY nome`
	rows, err := s.Dbpool.Query(context.Background(), sql, models.StatusPendente)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.Cargo, &u.Status); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Storage) UpdateUser(userID string, user models.User, newPassword string) error {
	tx, err := s.Dbpool.Begin(context.Background())
	if err != nil {
		return fmt.Errorf("não foi possível iniciar a transação: %w", err)
	}
	defer tx.Rollback(context.Background())

	sqlDetails := `UPDATE usuarios SET nome = $1, email = $2, cargo = $3 WHERE id = $4`
	_, err = tx.Exec(context.Background(), sqlDetails, user.Nome, user.Email, user.Cargo, userID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar detalhes do utilizador: %w", err)
	}

	if newPassword != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("falha ao gerar hash da nova senha: %w", err)
		}
		sqlPass := `UPDATE usuarios SET senha_hash = $1 WHERE id = $2`
		_, err = tx.Exec(context.Background(), sqlPass, string(hashedPassword), userID)
		if err != nil {
			return fmt.Errorf("falha ao atualizar a senha do utilizador: %w", err)
		}
	}

	return tx.Commit(context.Background())
}

func (s *Storage) DeleteUserByID(id string) error {
	_, err := s.Dbpool.Exec(context.Background(), "DELETE FROM usuarios WHERE id = $1", id)
	return err
}
