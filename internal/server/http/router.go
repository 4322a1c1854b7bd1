package http

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors name fields as clients send them.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func (s *Server) routes() *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(s.accessLog(), s.recovery(), s.timeout())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	guarded := s.requireIdentity()

	r.POST("/users", s.registerUser)
	r.GET("/users/activate", s.activateUser)
	r.POST("/users/login", s.login)
	r.GET("/users/:id", guarded, s.getUser)
	r.PATCH("/users/:id", guarded, s.updateUser)
	r.GET("/users/:id/products", s.userProducts)
	r.GET("/users/:id/reactions", s.userReactions)

	r.POST("/products", guarded, s.createProduct)
	r.GET("/products/recent", s.recentProducts)
	r.GET("/products/popular", s.popularProducts)
	r.GET("/products/:uuid", s.getProduct)
	r.PATCH("/products/:uuid", guarded, s.updateProduct)
	r.DELETE("/products/:uuid", guarded, s.deleteProduct)
	r.POST("/products/:id/reaction/add", guarded, s.addReaction)
	r.POST("/products/:id/reaction/sub", guarded, s.subReaction)

	r.GET("/tags", s.listTags)

	r.POST("/upload", guarded, s.upload)
	r.POST("/upload/presign", guarded, s.presignUpload)

	r.POST("/suggestion", s.suggest)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apiError{"NotFound", "no such route"})
	})
	return r
}
