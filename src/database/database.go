package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/expensetracker/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateUsersTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		weekly_budget TEXT NOT NULL DEFAULT '0',
		monthly_budget TEXT NOT NULL DEFAULT '',
		marital_status TEXT,
		tax_class TEXT,
		religious_status TEXT,
		tax_year TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT,
		description TEXT,
		payment_method TEXT,
		vendor TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS income (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		source TEXT,
		type TEXT,
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS scheduler_state (
		trigger_name TEXT PRIMARY KEY,
		last_fired_key TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateUsersTable adds columns introduced after the first schema so old
// databases keep working without a migration tool.
func migrateUsersTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='users'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'users' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'users' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'users' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'users' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(users)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'users'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'users': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'users'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'users': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'users'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'users': %v", err)
		}
		return
	}

	if _, ok := columnExists["monthly_budget"]; !ok {
		_, err := DB.Exec("ALTER TABLE users ADD COLUMN monthly_budget TEXT NOT NULL DEFAULT ''")
		if err != nil {
			logger.L.Error("Error adding 'monthly_budget' column to 'users' table", "error", err)
		} else {
			logger.L.Info("Added 'monthly_budget' column to 'users' table")
		}
	}
	if _, ok := columnExists["marital_status"]; !ok {
		_, err := DB.Exec("ALTER TABLE users ADD COLUMN marital_status TEXT")
		if err != nil {
			logger.L.Error("Error adding 'marital_status' column to 'users' table", "error", err)
		} else {
			logger.L.Info("Added 'marital_status' column to 'users' table")
		}
	}
}
