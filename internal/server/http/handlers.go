package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/services"
)

type registerRequest struct {
	User struct {
		Username string `json:"username" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	} `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	User struct {
		Username *string `json:"username" binding:"omitnil,min=1"`
		Nickname *string `json:"nickname" binding:"omitnil,min=1"`
	} `json:"user"`
}

type productRequest struct {
	Product struct {
		Title    string  `json:"title" binding:"required,max=33"`
		Body     string  `json:"body" binding:"required"`
		Simple   string  `json:"simple" binding:"required"`
		Img      string  `json:"img" binding:"required,url"`
		Duration int32   `json:"duration" binding:"gte=0"`
		Kind     string  `json:"kind"`
		Status   string  `json:"status"`
		Tags     []int64 `json:"tags" binding:"dive,gt=0"`
	} `json:"product"`
}

func (r *productRequest) input() models.ProductInput {
	p := r.Product
	return models.ProductInput{
		Title:    p.Title,
		Body:     p.Body,
		Simple:   p.Simple,
		Img:      p.Img,
		Duration: p.Duration,
		Kind:     p.Kind,
		Status:   p.Status,
		TagIDs:   p.Tags,
	}
}

type reactionRequest struct {
	Kind string `json:"kind" binding:"required,max=32"`
}

type uploadRequest struct {
	Asset struct {
		Key        string `json:"key" binding:"max=512"`
		Attachment string `json:"attachment" binding:"required"`
	} `json:"asset"`
}

type suggestionRequest struct {
	Long int    `json:"long"`
	Lang string `json:"lang" binding:"required"`
	Kind string `json:"kind"`
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func uuidParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return uuid.Nil, badRequest("invalid uuid %q", c.Param("uuid"))
	}
	return id, nil
}

// --- users ---

func (s *Server) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	u, err := s.services.Users.Register(c.Request.Context(), services.Registration{
		Username: req.User.Username,
		Nickname: req.User.Nickname,
		Email:    req.User.Email,
		Password: req.User.Password,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *Server) activateUser(c *gin.Context) {
	token := c.Query(common.ActivationTokenParam)
	if token == "" {
		s.abortWithError(c, badRequest("token is required"))
		return
	}

	u, err := s.services.Users.Activate(c.Request.Context(), token)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	token, err := s.services.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) getUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	u, err := s.services.Users.Get(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	u, err := s.services.Users.Update(c.Request.Context(), identity(c).ID, id, models.UserUpdate{
		Username: req.User.Username,
		Nickname: req.User.Nickname,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (s *Server) userProducts(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	ps, err := s.services.Products.ByUser(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": ps})
}

func (s *Server) userReactions(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	rs, err := s.services.Reactions.RecentOnUserProducts(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reactions": rs})
}

// --- products ---

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	p, err := s.services.Products.Create(c.Request.Context(), identity(c).ID, req.input())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (s *Server) updateProduct(c *gin.Context) {
	id, err := uuidParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	p, err := s.services.Products.Update(c.Request.Context(), identity(c).ID, id, req.input())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := uuidParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	if err := s.services.Products.Delete(c.Request.Context(), identity(c).ID, id); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := uuidParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	d, err := s.services.Products.Get(c.Request.Context(), id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product":   d.Product,
		"user":      d.User,
		"tag_ids":   d.TagIDs,
		"reactions": d.Reactions,
	})
}

func (s *Server) recentProducts(c *gin.Context) {
	ps, err := s.services.Products.Recent(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": ps})
}

func (s *Server) popularProducts(c *gin.Context) {
	ps, err := s.services.Products.Popular(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": ps})
}

// --- reactions ---

func (s *Server) addReaction(c *gin.Context) {
	s.react(c, func(userID, productID int64, kind string) error {
		_, err := s.services.Reactions.Add(c.Request.Context(), userID, productID, kind)
		return err
	})
}

func (s *Server) subReaction(c *gin.Context) {
	s.react(c, func(userID, productID int64, kind string) error {
		return s.services.Reactions.Sub(c.Request.Context(), userID, productID, kind)
	})
}

func (s *Server) react(c *gin.Context, apply func(userID, productID int64, kind string) error) {
	productID, err := idParam(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	if err := apply(identity(c).ID, productID, req.Kind); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// --- tags, assets, suggestions ---

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.services.Tags.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (s *Server) upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	url, err := s.services.Assets.Upload(c.Request.Context(), identity(c).ID, req.Asset.Key, req.Asset.Attachment)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": gin.H{"url": url}})
}

func (s *Server) presignUpload(c *gin.Context) {
	key, url, err := s.services.Assets.PresignPut(c.Request.Context(), identity(c).ID)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}

func (s *Server) suggest(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abortWithError(c, err)
		return
	}

	sg, err := s.services.Suggestions.Suggest(c.Request.Context(), req.Lang)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": sg})
}
