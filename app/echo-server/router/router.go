package router

import (
	"campusEvents/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupEventRoutes(api *echo.Group, handler *rest.EventHandler) {
	events := api.Group("/events")

	events.GET("", handler.GetActiveEvents)
	events.GET("/:id", handler.GetEventByID)
	events.POST("/bulk", handler.GetEventsBulk)
	events.POST("/by-clusters", handler.GetEventsByClusters)
	events.POST("/:id/like", handler.LikeEvent)
	events.POST("/:id/dislike", handler.DislikeEvent)
}

func SetupStudentRoutes(api *echo.Group, handler *rest.StudentHandler) {
	students := api.Group("/students")

	students.GET("", handler.GetAllStudents)
	students.GET("/:id", handler.GetStudentByID)
	students.GET("/participant/:participant_id", handler.GetStudentByParticipantID)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations")

	reco.GET("/student/:student_id", handler.GetRecommendations)
	reco.POST("/student/:student_id/recalculate", handler.RecalculateForStudent)
	reco.POST("/recalculate", handler.RecalculateAll)
	reco.DELETE("/:id", handler.DeleteRecommendation)
}

func SetupFavoriteRoutes(api *echo.Group, handler *rest.FavoriteHandler) {
	favorites := api.Group("/students/:student_id/favorites")

	favorites.GET("", handler.GetFavorites)
	favorites.POST("", handler.AddFavorite)
	favorites.GET("/count", handler.CountFavorites)
	favorites.GET("/check/:event_id", handler.CheckFavorite)
	favorites.DELETE("/:event_id", handler.RemoveFavorite)
}

func SetupBotUserRoutes(api *echo.Group, handler *rest.BotUserHandler) {
	botUsers := api.Group("/bot-users")

	botUsers.POST("", handler.RegisterBotUser)
	botUsers.GET("/:telegram_id", handler.GetBotUser)
	botUsers.POST("/:telegram_id/activity", handler.TouchBotUserActivity)
	botUsers.DELETE("/:telegram_id", handler.DeleteBotUser)
}

func SetupFeedbackRoutes(api *echo.Group, handler *rest.FeedbackHandler) {
	feedback := api.Group("/feedback")

	feedback.POST("", handler.SubmitFeedback)
	feedback.GET("/student/:student_id", handler.GetFeedbackByStudent)
}

func SetupMaintenanceRoutes(api *echo.Group, handler *rest.MaintenanceHandler) {
	maintenance := api.Group("/maintenance")

	maintenance.GET("", handler.GetInfo)
	maintenance.GET("/info", handler.GetInfo)
	maintenance.GET("/runs", handler.GetRuns)
	maintenance.POST("/process-csv", handler.ProcessEventsCSV)
	maintenance.POST("/load-json", handler.LoadEventsJSON)
	maintenance.POST("/process-students", handler.ProcessStudentsExcel)
	maintenance.POST("/load-students", handler.LoadStudentsJSON)
	maintenance.POST("/preprocess-directions", handler.PreprocessDirections)
	maintenance.POST("/clusterize-directions", handler.ClusterizeDirections)
	maintenance.POST("/recalculate", handler.Recalculate)
	maintenance.POST("/reset-database", handler.ResetDatabase)
}
