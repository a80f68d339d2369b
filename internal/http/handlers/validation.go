package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sayevvv/LearnUp-sub001/internal/http/response"
)

var topicSlugRE = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding rules to gin's validator engine.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = v.RegisterValidation("topicslug", validTopicSlug)
	})
	return registerErr
}

// topicslug: lower-case words joined by single hyphens, at most 64 bytes.
func validTopicSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) <= 64 && topicSlugRE.MatchString(s)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// versionQuery reads ?version_id=; empty means the current scope.
func versionQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query("version_id"))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_version_id", nil)
		return nil, false
	}
	if id == uuid.Nil {
		return nil, true
	}
	return &id, true
}
