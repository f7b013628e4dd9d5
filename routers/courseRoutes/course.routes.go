package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/validators"
	courseValidators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes registers the catalog. Reads are open to any authenticated user;
// writes are admin only. Static sub-paths are registered before /:id.
func SetupCourseRoutes(api fiber.Router) {
	id := validators.ParamID()
	admin := middleware.AdminOnly

	categoryGroup := api.Group("/categories", middleware.JWTMiddleware)
	categoryGroup.Get("/", controllers.ListCategories)
	categoryGroup.Post("/", admin, courseValidators.Category(), controllers.CreateCategory)
	categoryGroup.Get("/:id", id, controllers.GetCategory)
	categoryGroup.Put("/:id", admin, id, courseValidators.Category(), controllers.UpdateCategory)
	categoryGroup.Delete("/:id", admin, id, controllers.DeleteCategory)

	moduleGroup := api.Group("/modules", middleware.JWTMiddleware)
	moduleGroup.Get("/", courseValidators.ModuleList(), controllers.ListModules)
	moduleGroup.Post("/", admin, courseValidators.Module(), controllers.CreateModule)
	moduleGroup.Get("/:id", id, controllers.GetModule)
	moduleGroup.Put("/:id", admin, id, courseValidators.Module(), controllers.UpdateModule)
	moduleGroup.Delete("/:id", admin, id, controllers.DeleteModule)

	videoGroup := api.Group("/videos", middleware.JWTMiddleware)
	videoGroup.Get("/", courseValidators.ModuleList(), controllers.ListVideos)
	videoGroup.Get("/by-category", courseValidators.ByCategory(), controllers.VideosByCategory)
	videoGroup.Post("/bulk-reorder", admin, courseValidators.BulkReorder(), controllers.BulkReorderVideos)
	videoGroup.Post("/", admin, courseValidators.Video(), controllers.CreateVideo)
	videoGroup.Get("/:id", id, controllers.GetVideo)
	videoGroup.Put("/:id", admin, id, courseValidators.Video(), controllers.UpdateVideo)
	videoGroup.Delete("/:id", admin, id, controllers.DeleteVideo)
	videoGroup.Post("/:id/increment-view", id, controllers.IncrementView)
	videoGroup.Get("/:id/stats", admin, id, controllers.VideoStats)
	videoGroup.Get("/:id/access", id, controllers.VideoAccess)

	taskGroup := api.Group("/tasks", middleware.JWTMiddleware)
	taskGroup.Get("/", controllers.ListTasks)
	taskGroup.Get("/by-video", courseValidators.ByVideo(), controllers.TasksByVideo)
	taskGroup.Post("/", admin, courseValidators.Task(), controllers.CreateTask)
	taskGroup.Get("/:id", id, controllers.GetTask)
	taskGroup.Put("/:id", admin, id, courseValidators.Task(), controllers.UpdateTask)
	taskGroup.Delete("/:id", admin, id, controllers.DeleteTask)
	taskGroup.Get("/:id/stats", admin, id, controllers.TaskStats)
	taskGroup.Post("/:id/link-to-video", admin, id, courseValidators.LinkToVideo(), controllers.LinkTaskToVideo)

	questionGroup := api.Group("/task-questions", middleware.JWTMiddleware)
	questionGroup.Get("/", controllers.ListQuestions)
	questionGroup.Post("/", admin, courseValidators.Question(), controllers.CreateQuestion)
	questionGroup.Get("/:id", id, controllers.GetQuestion)
	questionGroup.Put("/:id", admin, id, courseValidators.Question(), controllers.UpdateQuestion)
	questionGroup.Delete("/:id", admin, id, controllers.DeleteQuestion)

	dashGroup := api.Group("/dashboard", middleware.JWTMiddleware, admin)
	dashGroup.Get("/stats", controllers.AdminDashboardStats)
}
