package config

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var DB *sql.DB

func InitDB() {
	dsn := GetEnv("MYSQL_DSN", "root:root@tcp(127.0.0.1:3306)/helpqueue?parseTime=true")

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("MySQL open failed:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("MySQL not reachable:", err)
	}

	DB = db
	log.Println("MySQL connected")
}

func CloseDB() {
	if DB != nil {
		_ = DB.Close()
	}
}
