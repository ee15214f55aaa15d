package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/domain"
	"task-tracker/internal/query"
	"task-tracker/internal/service"
	"task-tracker/internal/storage"
)

const dueDateLayout = "2006-01-02"

// Handler wires HTTP routes to domain services.
type Handler struct {
	users     service.UserService
	tasks     service.TaskService
	tokens    TokenVerifier
	storage   storage.Service
	bucket    string
	keyPrefix string
	logger    *logrus.Logger
}

func NewHandler(users service.UserService, tasks service.TaskService, tokens TokenVerifier, store storage.Service, bucket, keyPrefix string, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:     users,
		tasks:     tasks,
		tokens:    tokens,
		storage:   store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
	}

	tasks := router.Group("/tasks", h.requireAuth())
	{
		tasks.POST("", h.createTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}

	if h.storage != nil && h.bucket != "" {
		exports := router.Group("/exports", h.requireAuth())
		{
			exports.POST("", h.exportTasks)
			exports.GET("", h.listExports)
			exports.DELETE("", h.deleteExports)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"min=6"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type taskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"oneof=pending in-progress completed"`
	DueDate     string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if _, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username or email already exists"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) createTask(c *gin.Context) {
	var req taskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), accountID(c), taskInputFromRequest(req))
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, taskToResponse(*task))
}

func (h *Handler) listTasks(c *gin.Context) {
	params := query.Params{
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
		Order:     c.Query("order"),
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Search:    c.Query("search"),
	}

	page, err := h.tasks.List(c.Request.Context(), accountID(c), params)
	if err != nil {
		var perr *query.ParamError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{{Field: perr.Field, Message: perr.Message}}})
			return
		}
		h.internalError(c, err)
		return
	}

	resp := make([]TaskResponse, len(page.Tasks))
	for i := range page.Tasks {
		resp[i] = taskToResponse(page.Tasks[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks":       resp,
		"currentPage": page.CurrentPage,
		"totalPages":  page.TotalPages,
		"totalTasks":  page.TotalTasks,
	})
}

func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) updateTask(c *gin.Context) {
	var req taskRequest
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), accountID(c), c.Param("id"), taskInputFromRequest(req))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskToResponse(*task))
}

func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), accountID(c), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *Handler) exportTasks(c *gin.Context) {
	owner := accountID(c)
	tasks, err := h.tasks.Snapshot(c.Request.Context(), owner)
	if err != nil {
		h.internalError(c, err)
		return
	}

	snapshot := make([]TaskResponse, len(tasks))
	for i := range tasks {
		snapshot[i] = taskToResponse(tasks[i])
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		h.internalError(c, err)
		return
	}

	key := fmt.Sprintf("%s/%s/tasks-%d.json", h.keyPrefix, owner, time.Now().Unix())
	location, err := h.storage.Upload(c.Request.Context(), h.bucket, key, bytes.NewReader(payload))
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"location":  location,
		"taskCount": len(tasks),
	})
}

func (h *Handler) listExports(c *gin.Context) {
	prefix := fmt.Sprintf("%s/%s/", h.keyPrefix, accountID(c))
	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]ExportObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, gin.H{"exports": resp})
}

func (h *Handler) deleteExports(c *gin.Context) {
	prefix := fmt.Sprintf("%s/%s/", h.keyPrefix, accountID(c))
	if err := h.storage.DeletePrefix(c.Request.Context(), h.bucket, prefix); err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Exports deleted successfully"})
}

// bindJSON binds the body and writes the aggregated validation report on
// failure. Returns false when a response has already been written.
func (h *Handler) bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	if report, ok := describeBindingError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": report})
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
	}
	return false
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
	UserID      string `json:"userId"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type ExportObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

func taskInputFromRequest(req taskRequest) service.TaskInput {
	input := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
	}
	if req.DueDate != "" {
		// format already checked by the datetime binding tag
		if due, err := time.Parse(dueDateLayout, req.DueDate); err == nil {
			due = due.UTC()
			input.DueDate = &due
		}
	}
	return input
}

func taskToResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		UserID:      task.OwnerID,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
	}
	if task.DueDate != nil {
		resp.DueDate = task.DueDate.Format(dueDateLayout)
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) ExportObjectResponse {
	resp := ExportObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
