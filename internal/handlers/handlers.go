package handlers

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/apexsim/apexsim-golang/internal/wpimport"
)

// Handlers holds all dependencies for the API handlers.
type Handlers struct {
	DB          *sql.DB
	Transformer *wpimport.Transformer
	Log         *zap.Logger
}
