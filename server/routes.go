package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc(RouteHealth, s.HealthHandler())
	s.RegisterRouteFunc(RouteWS, s.WebSocketHandler())

	apiMiddleware := s.APIMiddleware()
	s.RegisterRouteFunc(RouteLogin, ChainMiddleware(s.LoginHandler(), apiMiddleware...))
	s.RegisterRouteFunc(RouteSendMessage, ChainMiddleware(s.SendMessageHandler(), append(apiMiddleware, s.RequireAuth())...))
	s.RegisterRouteFunc(RouteChatHistory, ChainMiddleware(s.ChatHistoryHandler(), append(apiMiddleware, s.RequireAuth())...))
	s.RegisterRouteFunc(RouteOnlineUsers, ChainMiddleware(s.OnlineUsersHandler(), append(apiMiddleware, s.RequireAuth())...))
}
