package database

import (
	"context"
	"database/sql"
	"log"
)

// EnsureSchema creates all tables when they do not exist yet. The
// reservations table keeps two nullable foreign keys for the polymorphic
// target; application code only ever sets exactly one of them.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            username      VARCHAR(255) NOT NULL,
            first_name    VARCHAR(100) NOT NULL,
            last_name     VARCHAR(100) NOT NULL,
            email         VARCHAR(255) NOT NULL UNIQUE,
            password_hash VARCHAR(255) NOT NULL,
            role          VARCHAR(50)  NOT NULL DEFAULT 'CLIENT',
            created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
            id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            user_id    BIGINT UNSIGNED NOT NULL,
            token_hash CHAR(64) NOT NULL UNIQUE,
            expires_at DATETIME NOT NULL,
            revoked_at DATETIME NULL,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
        )`,
		`CREATE TABLE IF NOT EXISTS destinations (
            id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            name        VARCHAR(255) NOT NULL,
            description TEXT,
            activities  TEXT,
            cost        BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS packages (
            id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            name        VARCHAR(255) NOT NULL,
            start_date  DATE NOT NULL,
            end_date    DATE NOT NULL,
            seats       INT UNSIGNED NOT NULL DEFAULT 0,
            cost        BIGINT NOT NULL DEFAULT 0,
            description TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS package_destinations (
            package_id     BIGINT UNSIGNED NOT NULL,
            destination_id BIGINT UNSIGNED NOT NULL,
            PRIMARY KEY (package_id, destination_id),
            FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE,
            FOREIGN KEY (destination_id) REFERENCES destinations(id) ON DELETE CASCADE
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id               BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
            user_id          BIGINT UNSIGNED NOT NULL,
            destination_id   BIGINT UNSIGNED NULL,
            package_id       BIGINT UNSIGNED NULL,
            reservation_date DATE NOT NULL,
            quantity         INT UNSIGNED NOT NULL,
            created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY (user_id) REFERENCES users(id),
            FOREIGN KEY (destination_id) REFERENCES destinations(id),
            FOREIGN KEY (package_id) REFERENCES packages(id)
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed populates the catalog with demo data when it is empty so a fresh
// install has something to browse. Existing rows are never touched.
func Seed(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM destinations`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("seeding demo destinations and packages")

	destinations := []struct {
		name, description, activities string
		cost                          int64
	}{
		{"Paris, France", "The city of light on the Seine.", "Eiffel Tower, Louvre, Seine cruise", 1450},
		{"Rome, Italy", "Ancient capital turned open-air museum.", "Colosseum, Vatican, Trastevere food walk", 1300},
		{"Cusco, Peru", "Gateway to the Inca empire in the Andes.", "Machu Picchu, Sacred Valley, San Pedro market", 1100},
		{"Tokyo, Japan", "Neon metropolis with centuries-old shrines.", "Senso-ji, Shibuya crossing, Tsukiji market", 1800},
		{"Cairo, Egypt", "Five thousand years of history on the Nile.", "Pyramids of Giza, Egyptian Museum, Nile felucca", 950},
		{"New York, EE.UU.", "The city that never sleeps.", "Times Square, Central Park, Broadway", 1700},
		{"Sydney, Australia", "Harbour city between beaches and bush.", "Opera House, Bondi Beach, Blue Mountains", 2100},
		{"Barcelona, España", "Modernist architecture beside the Mediterranean.", "Sagrada Familia, Park Guell, Gothic Quarter", 1250},
	}
	for _, d := range destinations {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO destinations (name, description, activities, cost) VALUES (?, ?, ?, ?)`,
			d.name, d.description, d.activities, d.cost); err != nil {
			return err
		}
	}

	packages := []struct {
		name, start, end string
		seats            uint32
		cost             int64
		description      string
		members          []string
	}{
		{
			"Classic Europe", "2026-05-10", "2026-05-20", 25, 3800,
			"Paris, Rome and Barcelona in ten days of museums, food and old-town walks.",
			[]string{"Paris, France", "Rome, Italy", "Barcelona, España"},
		},
		{
			"Andes Adventure", "2026-07-15", "2026-07-25", 15, 2900,
			"High-altitude trekking and Inca history around Cusco and the Sacred Valley.",
			[]string{"Cusco, Peru"},
		},
		{
			"East Meets West", "2026-09-01", "2026-09-12", 20, 4200,
			"Tokyo and New York back to back: temples, skylines and street food.",
			[]string{"Tokyo, Japan", "New York, EE.UU."},
		},
	}
	for _, p := range packages {
		res, err := db.ExecContext(ctx,
			`INSERT INTO packages (name, start_date, end_date, seats, cost, description) VALUES (?, ?, ?, ?, ?, ?)`,
			p.name, p.start, p.end, p.seats, p.cost, p.description)
		if err != nil {
			return err
		}
		pkgID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, member := range p.members {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO package_destinations (package_id, destination_id)
                 SELECT ?, id FROM destinations WHERE name = ?`,
				pkgID, member); err != nil {
				return err
			}
		}
	}
	return nil
}
