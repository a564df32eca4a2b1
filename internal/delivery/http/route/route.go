package route

import (
	"github.com/concord-chat/concord/internal/delivery/http"
	"github.com/concord-chat/concord/internal/delivery/http/middleware"
	"github.com/concord-chat/concord/internal/model"
	"github.com/concord-chat/concord/internal/voice"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	App                  *fiber.App
	AuthMiddleware       *middleware.AuthMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	UserController       *http.UserController
	ServerController     *http.ServerController
	RoleController       *http.RoleController
	VoiceGateway         *voice.Gateway
}

func (c *RouteConfig) SetupRoute() {
	api := c.App.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/register", c.UserController.Register)
	authGroup.Post("/login", c.UserController.Login)

	userGroup := api.Group("/users", c.AuthMiddleware.ProtectedRoute())
	userGroup.Get("/me", c.UserController.GetUserInfo)
	userGroup.Post("/logout", c.UserController.Logout)
	userGroup.Put("/avatar", c.UserController.UpdateAvatar)

	serverGroup := api.Group("/servers", c.AuthMiddleware.ProtectedRoute())
	serverGroup.Post("/create", c.ServerController.CreateServer)
	serverGroup.Post("/join", c.ServerController.JoinServerFromInvite)
	serverGroup.Get("/me", c.ServerController.GetUserServers)

	serverGroup.Post("/:serverId/invites",
		c.PermissionMiddleware.RequirePermission(model.PermissionCreateInstantInvite),
		c.ServerController.CreateInviteLink)

	memberGroup := serverGroup.Group("/:serverId/members")
	memberGroup.Get("/", c.PermissionMiddleware.RequireMember(), c.ServerController.ListMembers)
	memberGroup.Delete("/:memberId",
		c.PermissionMiddleware.RequirePermission(model.PermissionKickMembers),
		c.ServerController.KickMember)
	memberGroup.Post("/:memberId/ban",
		c.PermissionMiddleware.RequirePermission(model.PermissionBanMembers),
		c.ServerController.BanMember)
	memberGroup.Post("/:memberId/mute",
		c.PermissionMiddleware.RequirePermission(model.PermissionMuteMembers),
		c.ServerController.MuteMember)
	memberGroup.Delete("/:memberId/mute",
		c.PermissionMiddleware.RequirePermission(model.PermissionMuteMembers),
		c.ServerController.UnmuteMember)
	memberGroup.Post("/:memberId/roles/:roleId",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageRoles),
		c.RoleController.AssignRole)
	memberGroup.Delete("/:memberId/roles/:roleId",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageRoles),
		c.RoleController.UnassignRole)

	roleGroup := serverGroup.Group("/:serverId/roles")
	roleGroup.Get("/", c.PermissionMiddleware.RequireMember(), c.RoleController.ListRoles)
	roleGroup.Post("/",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageRoles),
		c.RoleController.CreateRole)
	roleGroup.Patch("/:roleId",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageRoles),
		c.RoleController.UpdateRole)
	roleGroup.Delete("/:roleId",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageRoles),
		c.RoleController.DeleteRole)

	channelGroup := serverGroup.Group("/:serverId/channels")
	channelGroup.Get("/", c.PermissionMiddleware.RequireMember(), c.ServerController.ListChannels)
	channelGroup.Post("/",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageChannels),
		c.ServerController.CreateChannel)
	channelGroup.Patch("/:channelId",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageChannels),
		c.ServerController.UpdateChannel)
	channelGroup.Delete("/:channelId",
		c.PermissionMiddleware.RequirePermission(model.PermissionManageChannels),
		c.ServerController.DeleteChannel)

	// Voice signaling rides its own websocket endpoint. Identity travels in
	// the join-room frame, not the upgrade request, so the route skips the
	// auth middleware.
	c.App.Get("/socket", voice.Upgrade, c.VoiceGateway.Handler())
}
