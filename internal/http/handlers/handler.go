package handlers

import (
	"database/sql"

	"wallethunter/internal/repository"
	"wallethunter/internal/service"
)

type Handler struct {
	DB    *sql.DB
	Repo  *repository.UserRepository
	Admin *service.AdminService
}

func NewHandler(db *sql.DB) *Handler {
	repo := repository.NewUserRepository(db)
	return &Handler{
		DB:    db,
		Repo:  repo,
		Admin: service.NewAdminService(db, repo),
	}
}
