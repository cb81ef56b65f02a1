package handlers

import (
	"github.com/rogerio-castellano/school-inventory/internal/alert"
	"github.com/rogerio-castellano/school-inventory/internal/auth"
	"github.com/rogerio-castellano/school-inventory/internal/notice"
	"github.com/rogerio-castellano/school-inventory/internal/pages"
	repo "github.com/rogerio-castellano/school-inventory/internal/repo"
	"github.com/rogerio-castellano/school-inventory/internal/workflow"
)

var (
	inventoryRepo repo.InventoryRepository
	requestRepo   repo.RequestRepository
	categoryRepo  repo.CategoryRepository
	userRepo      repo.UserRepository

	loader      *pages.Loader
	workflowSvc *workflow.Service

	notices   notice.Notifier = notice.Discard
	noticeLog notice.Log
	noticeHub *notice.Hub

	tokens               = auth.NewTokens("super-secret-key", 0, "school-inventory")
	revoker auth.Revoker = auth.NewMemoryRevoker()
	mailer  *alert.Mailer
)

// SetRepos wires the record adapters and everything derived from them.
func SetRepos(inv repo.InventoryRepository, req repo.RequestRepository, cat repo.CategoryRepository) {
	inventoryRepo = inv
	requestRepo = req
	categoryRepo = cat
	loader = pages.NewLoader(inv, req, cat, notices)
	workflowSvc = workflow.NewService(req, notices)
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

// SetNotices sets where handler notices go. Call it before SetRepos.
func SetNotices(n notice.Notifier, log notice.Log, hub *notice.Hub) {
	if n == nil {
		n = notice.Discard
	}
	notices = n
	noticeLog = log
	noticeHub = hub
}

func SetBulkLimit(n int) {
	if loader != nil {
		loader.BulkLimit = n
	}
}

func SetTokens(t *auth.Tokens) {
	tokens = t
}

func Tokens() *auth.Tokens {
	return tokens
}

func SetRevoker(r auth.Revoker) {
	revoker = r
}

func Revoker() auth.Revoker {
	return revoker
}

func SetMailer(m *alert.Mailer) {
	mailer = m
}
