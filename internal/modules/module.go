// Package modules defines the contract every resource module implements.
package modules

import (
	"github.com/dcsystem/dcs-backend/internal/config"
	"github.com/dcsystem/dcs-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the shared services a module wires its routes against.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Authz    *services.Authorizer
	Notifier *services.Notifier
}

// Module is a self-contained resource: its tables and its routes.
type Module interface {
	// ID returns the module name. Routes are mounted under /<ID>.
	ID() string

	// Models returns the gorm model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the module on its own /<ID> group, which already
	// carries the authentication and request transaction middleware.
	RegisterRoutes(router fiber.Router, deps *Deps)
}

// Models collects the tables of every module in list.
func Models(list []Module) []interface{} {
	var out []interface{}
	for _, m := range list {
		out = append(out, m.Models()...)
	}
	return out
}
