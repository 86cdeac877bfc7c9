package server

const (
	RouteHealth = "GET /health"
	RouteWS     = "GET /ws"
	RouteLogin  = "POST /api/v1/auth/login"

	RouteSendMessage = "POST /api/v1/chat/messages"
	RouteChatHistory = "GET /api/v1/chat/messages"
	RouteOnlineUsers = "GET /api/v1/chat/online-users"
)
