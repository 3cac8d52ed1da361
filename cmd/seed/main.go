package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/asanchezf/recetario-api/config"
)

type seedRecipe struct {
	Name        string
	Description string
	Steps       []string
	Ingredients []string
	IsPublic    bool
}

var demoRecipes = []seedRecipe{
	{
		Name:        "Tarta de manzana",
		Description: "Clásica tarta de manzana, perfecta para merendar.",
		Steps:       []string{"Pelar y cortar manzanas", "Mezclar masa", "Colocar manzanas", "Hornear 45 minutos"},
		Ingredients: []string{"manzana", "harina", "azúcar", "mantequilla", "huevo"},
		IsPublic:    true,
	},
	{
		Name:        "Gazpacho Andaluz",
		Description: "Sopa fría tradicional, refrescante en verano.",
		Steps:       []string{"Triturar tomates y verduras", "Colar", "Servir frío con aceite de oliva"},
		Ingredients: []string{"tomate", "pepino", "pimiento", "ajo", "aceite de oliva", "vinagre", "sal"},
		IsPublic:    true,
	},
	{
		Name:        "Ensalada César",
		Description: "Ensalada con aderezo cremoso y croutons.",
		Steps:       []string{"Preparar aderezo", "Cortar lechuga", "Mezclar y añadir croutons"},
		Ingredients: []string{"lechuga romana", "parmesano", "pan", "anchoas", "huevo", "aceite"},
		IsPublic:    true,
	},
	{
		Name:        "Arroz con leche",
		Description: "Postre cremoso y dulce.",
		Steps:       []string{"Hervir leche con arroz", "Añadir azúcar", "Cocinar hasta espesar"},
		Ingredients: []string{"arroz", "leche", "azúcar", "canela"},
		IsPublic:    true,
	},
	{
		Name:        "Huevos revueltos",
		Description: "Rápido y sencillo para el desayuno.",
		Steps:       []string{"Batir huevos", "Cocinar en sartén con mantequilla", "Servir calientes"},
		Ingredients: []string{"huevo", "mantequilla", "sal", "pimienta"},
		IsPublic:    true,
	},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set; cannot seed")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	userID := resolveUserID(db)
	if userID == "" {
		log.Fatal("no user found; register one (or set SEED_USER_ID) before seeding")
	}
	fmt.Printf("seeding recipes for user %s\n", userID)

	for _, r := range demoRecipes {
		// Re-running the seed should not pile up duplicates.
		if _, err := db.Exec(`DELETE FROM recipes WHERE name = $1`, r.Name); err != nil {
			log.Fatalf("failed to clean existing seed recipe %q: %v", r.Name, err)
		}

		steps, _ := json.Marshal(r.Steps)
		ingredients, _ := json.Marshal(r.Ingredients)

		var id int64
		err := db.QueryRow(`
			INSERT INTO recipes (name, description, steps, ingredients, user_id, is_public, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			RETURNING id
		`, r.Name, r.Description, steps, ingredients, userID, r.IsPublic).Scan(&id)
		if err != nil {
			log.Fatalf("failed to insert %q: %v", r.Name, err)
		}
		fmt.Printf("inserted: id=%d name=%s\n", id, r.Name)
	}

	var total int64
	if err := db.QueryRow(`SELECT count(*) FROM recipes`).Scan(&total); err == nil {
		fmt.Printf("total recipes after seed: %d\n", total)
	}
	fmt.Println("seed completed")
}

// resolveUserID prefers an explicit SEED_USER_ID, then the first Supabase auth
// user when the schema is present.
func resolveUserID(db *sql.DB) string {
	if uid := os.Getenv("SEED_USER_ID"); uid != "" {
		return uid
	}
	var uid string
	if err := db.QueryRow(`SELECT id::text FROM auth.users LIMIT 1`).Scan(&uid); err == nil {
		return uid
	}
	return ""
}
