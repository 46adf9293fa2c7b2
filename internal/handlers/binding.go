package handlers

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/k3rn3l808/swift_sim_backend/internal/core/domain"
)

// bicPattern matches ISO 9362 BICs: 4 letter bank code, 2 letter country
// code, 2 alphanumeric location characters, optional 3 character branch code.
var bicPattern = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}([A-Z0-9]{3})?$`)

var registerBindingsOnce sync.Once

// registerBindings installs the custom request validators on gin's binding
// engine. Safe to call from route registration and from handler tests.
func registerBindings() {
	registerBindingsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("bic", func(fl validator.FieldLevel) bool {
			return bicPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("transfertype", func(fl validator.FieldLevel) bool {
			switch domain.TransferType(fl.Field().String()) {
			case domain.TransferTypeM0, domain.TransferTypeM1, domain.TransferTypeSwiftMT, domain.TransferTypeSwiftMX:
				return true
			default:
				return false
			}
		})
	})
}
