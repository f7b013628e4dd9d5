package enrollmentRoutes

import (
	controllers "lms/controllers/enrollment"
	"lms/middleware"
	"lms/validators"
	enrollmentValidators "lms/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

func SetupEnrollmentRoutes(api fiber.Router) {
	id := validators.ParamID()
	admin := middleware.AdminOnly

	courseGroup := api.Group("/user-courses", middleware.JWTMiddleware)
	courseGroup.Get("/my-courses", controllers.MyCourses)
	courseGroup.Post("/grant-course", admin, enrollmentValidators.GrantCourse(), controllers.GrantCourse)
	courseGroup.Get("/", admin, enrollmentValidators.UserCourseList(), controllers.ListUserCourses)
	courseGroup.Post("/", admin, enrollmentValidators.GrantCourse(), controllers.CreateUserCourse)
	courseGroup.Get("/:id", admin, id, controllers.GetUserCourse)
	courseGroup.Put("/:id", admin, id, enrollmentValidators.UpdateUserCourse(), controllers.UpdateUserCourse)
	courseGroup.Delete("/:id", admin, id, controllers.DeleteUserCourse)

	progressGroup := api.Group("/progress", middleware.JWTMiddleware)
	progressGroup.Get("/my-progress", controllers.MyProgress)
	progressGroup.Post("/complete-video", enrollmentValidators.CompleteVideo(), controllers.CompleteVideo)
	progressGroup.Post("/complete-task", enrollmentValidators.CompleteTask(), controllers.CompleteTask)
	progressGroup.Get("/user-progress", admin, enrollmentValidators.UserProgress(), controllers.UserProgress)
	progressGroup.Get("/", admin, controllers.ListProgress)

	submissionGroup := api.Group("/submissions", middleware.JWTMiddleware)
	submissionGroup.Get("/my-submissions", controllers.MySubmissions)
	submissionGroup.Get("/by-task", admin, enrollmentValidators.ByTask(), controllers.SubmissionsByTask)
	submissionGroup.Get("/by-video", admin, controllers.SubmissionsByVideo)
	submissionGroup.Post("/submit", enrollmentValidators.Submit(), controllers.Submit)
	submissionGroup.Get("/", admin, enrollmentValidators.SubmissionList(), controllers.ListSubmissions)
	submissionGroup.Get("/:id", id, controllers.GetSubmission)
	submissionGroup.Delete("/:id", admin, id, controllers.DeleteSubmission)
	submissionGroup.Get("/:id/detail-with-answers", id, controllers.DetailWithAnswers)
	submissionGroup.Post("/:id/approve", admin, id, enrollmentValidators.Review(), controllers.ApproveSubmission)
	submissionGroup.Post("/:id/reject", admin, id, enrollmentValidators.Review(), controllers.RejectSubmission)
}
