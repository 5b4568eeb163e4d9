package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"chatline/broadcast"
	"chatline/config"
	"chatline/database"
	"chatline/handlers"
	"chatline/middleware"
	"chatline/realtime"
	"chatline/store"
	"chatline/websocket"
)

func main() {
	config.Load()

	db, err := database.Open(config.Cfg.DBDriver, config.Cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.CreateTables(db, config.Cfg.DBDriver); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	st := store.New(db)

	hub := broadcast.NewHub()
	go hub.Run()

	// The hub alone serves a single process; with VALKEY_ADDR set, events
	// are published to valkey and relayed back into every process's hub.
	var transport realtime.Broadcaster = hub
	if config.Cfg.ValkeyAddr != "" {
		vb, err := broadcast.NewValkeyBroadcaster(config.Cfg.ValkeyAddr)
		if err != nil {
			log.Fatalf("Failed to connect to valkey: %v", err)
		}
		defer vb.Close()

		go func() {
			if err := vb.Relay(context.Background(), hub); err != nil {
				log.Fatalf("Valkey relay stopped: %v", err)
			}
		}()
		transport = vb
	}

	dispatcher := realtime.NewDispatcher(transport)
	authorizer := realtime.NewAuthorizer(st)

	authH := &handlers.AuthHandler{Store: st}
	userH := &handlers.UserHandler{Store: st}
	friendH := &handlers.FriendHandler{Store: st}
	messageH := &handlers.MessageHandler{Store: st, Dispatcher: dispatcher}
	groupH := &handlers.GroupHandler{Store: st, Dispatcher: dispatcher}
	gateway := &websocket.Gateway{Hub: hub, Auth: authorizer}

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", middleware.AuthMiddleware(), authH.Logout)
	}

	users := r.Group("/api/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", userH.Me)
	}

	friends := r.Group("/api/friends")
	friends.Use(middleware.AuthMiddleware())
	{
		friends.GET("", friendH.Index)
		friends.POST("/request", friendH.SendRequest)
		friends.POST("/accept/:user_id", friendH.Accept)
		friends.POST("/reject/:user_id", friendH.Reject)
	}

	messages := r.Group("/api/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.GET("/:user_id", messageH.GetConversation)
		messages.POST("/:user_id", messageH.Send)
		messages.POST("/:user_id/typing", messageH.Typing)
	}

	groups := r.Group("/api/groups")
	groups.Use(middleware.AuthMiddleware())
	{
		groups.GET("", groupH.Index)
		groups.POST("", groupH.Create)
		groups.GET("/:id", groupH.Show)
		groups.POST("/:id/members", groupH.AddMember)
		groups.GET("/:id/messages", groupH.Messages)
		groups.POST("/:id/messages", groupH.SendMessage)
	}

	r.GET("/ws", gateway.Handle)

	log.Printf("Server starting on %s", config.Cfg.ServerAddr)
	if err := r.Run(config.Cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
