package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-assignment-api/internal/auth"
	"task-assignment-api/internal/middleware"
	"task-assignment-api/internal/models"
	"task-assignment-api/internal/realtime"
	"task-assignment-api/internal/service"
	"task-assignment-api/internal/taskid"
	"task-assignment-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type handlerEnv struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	tasks  *TaskHandler
	auth   *AuthHandler
	notifs *NotificationHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "test", Issuer: "iss", Audience: "aud"})
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	users := service.NewUserService(db, tokens, nil, logger)
	notifications := service.NewNotificationService(db, realtime.Discard{}, logger)
	tasks := service.NewTaskService(db, taskid.NewGenerator(db, taskid.Options{}), notifications, users, realtime.Discard{}, logger)
	return &handlerEnv{
		db:     db,
		tokens: tokens,
		tasks:  NewTaskHandler(tasks, logger),
		auth:   NewAuthHandler(users, logger),
		notifs: NewNotificationHandler(notifications, logger),
	}
}

func (e *handlerEnv) user(t *testing.T, id, name string, role models.Role) string {
	t.Helper()
	u := models.User{ID: id, FullName: name, Email: id + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	token, err := e.tokens.GenerateToken(u)
	require.NoError(t, err)
	return token
}

func send(r *gin.Engine, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask_Success(t *testing.T) {
	env := newHandlerEnv(t)
	adminToken := env.user(t, "u-1", "Sahil Admin", models.RoleAdmin)
	env.user(t, "u-2", "Rahul Sharma", models.RoleMember)

	r := gin.New()
	r.Use(middlewareFor(env))
	r.POST("/api/tasks", env.tasks.CreateTask)

	body, _ := json.Marshal(map[string]string{"title": "Test Task", "description": "Desc", "assignedUserId": "u-2"})
	w := send(r, http.MethodPost, "/api/tasks", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "TSK001", created.TaskID)
	require.Equal(t, "Rahul Sharma", created.AssignedUserName)
	require.Equal(t, "u-1", created.AssignedByUserID)

	var unread int64
	require.NoError(t, env.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", "u-2", false).Count(&unread).Error)
	require.EqualValues(t, 1, unread)
}

func TestCreateTask_InvalidBody(t *testing.T) {
	env := newHandlerEnv(t)
	adminToken := env.user(t, "u-1", "Sahil Admin", models.RoleAdmin)

	r := gin.New()
	r.Use(middlewareFor(env))
	r.POST("/api/tasks", env.tasks.CreateTask)

	w := send(r, http.MethodPost, "/api/tasks", adminToken, []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Invalid request body"}`, w.Body.String())
}

func TestUpdateTaskStatus_RequiresStatus(t *testing.T) {
	env := newHandlerEnv(t)
	memberToken := env.user(t, "u-2", "Rahul Sharma", models.RoleMember)

	r := gin.New()
	r.Use(middlewareFor(env))
	r.PATCH("/api/tasks/:id/status", env.tasks.UpdateTaskStatus)

	w := send(r, http.MethodPatch, "/api/tasks/any/status", memberToken, []byte(`{}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTask_ReturnsID(t *testing.T) {
	env := newHandlerEnv(t)
	adminToken := env.user(t, "u-1", "Sahil Admin", models.RoleAdmin)
	require.NoError(t, env.db.Create(&models.Task{ID: "t-1", TaskID: "TSK001", Title: "x", Status: models.StatusPending}).Error)

	r := gin.New()
	r.Use(middlewareFor(env))
	r.DELETE("/api/tasks/:id", env.tasks.DeleteTask)

	w := send(r, http.MethodDelete, "/api/tasks/t-1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Task deleted","id":"t-1"}`, w.Body.String())

	w = send(r, http.MethodDelete, "/api/tasks/t-1", adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignupThenLogin(t *testing.T) {
	env := newHandlerEnv(t)
	r := gin.New()
	r.POST("/api/auth/signup", env.auth.Signup)
	r.POST("/api/auth/login", env.auth.Login)

	w := send(r, http.MethodPost, "/api/auth/signup", "",
		[]byte(`{"fullName":"Priya Patel","email":"Priya.Patel@TaskManager.com","password":"User@123","role":"member"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session service.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.Equal(t, "priya.patel@taskmanager.com", session.User.Email)
	require.NotContains(t, w.Body.String(), "password")

	claims, err := env.tokens.ValidateToken(session.Token)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, claims.UserID)

	w = send(r, http.MethodPost, "/api/auth/login", "", []byte(`{"email":"priya.patel@taskmanager.com","password":"wrong"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())

	w = send(r, http.MethodPost, "/api/auth/login", "", []byte(`{"email":"priya.patel@taskmanager.com","password":"User@123"}`))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMarkRead_NotYours(t *testing.T) {
	env := newHandlerEnv(t)
	env.user(t, "u-2", "Rahul Sharma", models.RoleMember)
	otherToken := env.user(t, "u-3", "Priya Patel", models.RoleMember)
	require.NoError(t, env.db.Create(&models.Notification{ID: "n-1", UserID: "u-2", Title: "New Task Assigned"}).Error)

	r := gin.New()
	r.Use(middlewareFor(env))
	r.PATCH("/api/tasks/notifications/:id/read", env.notifs.MarkRead)

	w := send(r, http.MethodPatch, "/api/tasks/notifications/n-1/read", otherToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Forbidden: Not your notification"}`, w.Body.String())
}

func middlewareFor(env *handlerEnv) gin.HandlerFunc {
	return middleware.JWTAuthMiddleware(env.tokens)
}
