package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deniz/alumlink/internal/app/models/dto"
	"github.com/deniz/alumlink/internal/app/services"
	"github.com/deniz/alumlink/internal/middleware"
)

// MentorshipController handles mentor directory and assignment operations
type MentorshipController struct {
	assignmentService services.AssignmentService
}

// NewMentorshipController creates a new MentorshipController
func NewMentorshipController(assignmentService services.AssignmentService) *MentorshipController {
	return &MentorshipController{
		assignmentService: assignmentService,
	}
}

// ListMentors returns the mentor directory with live capacity figures
func (c *MentorshipController) ListMentors(ctx *gin.Context) {
	mentors, err := c.assignmentService.ListMentors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(mentors))
}

// StartMentorship lets the calling mentor take on students in bulk. Each
// student's outcome is reported independently.
func (c *MentorshipController) StartMentorship(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.StartMentorshipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())))
		return
	}

	result, err := c.assignmentService.AssignBulk(ctx.Request.Context(), caller.UserID, req.StudentIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// AssignMentor pairs one mentor with one student (admin override)
func (c *MentorshipController) AssignMentor(ctx *gin.Context) {
	var req dto.AssignMentorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())))
		return
	}

	assignment, err := c.assignmentService.AssignOne(ctx.Request.Context(), req.StudentID, req.MentorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(assignment))
}

// UnassignMentor ends one mentor-student pairing (admin only)
func (c *MentorshipController) UnassignMentor(ctx *gin.Context) {
	var req dto.UnassignMentorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())))
		return
	}

	if err := c.assignmentService.Unassign(ctx.Request.Context(), req.StudentID, req.MentorID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Mentorship ended"}))
}

// ListAssignments returns active assignments, optionally for one mentor
func (c *MentorshipController) ListAssignments(ctx *gin.Context) {
	var mentorID *int64
	if mentorIDStr := ctx.Query("mentorId"); mentorIDStr != "" {
		id, err := strconv.ParseInt(mentorIDStr, 10, 64)
		if err != nil || id <= 0 {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid mentor ID")))
			return
		}
		mentorID = &id
	}

	assignments, err := c.assignmentService.ListAssignments(ctx.Request.Context(), mentorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignments))
}
