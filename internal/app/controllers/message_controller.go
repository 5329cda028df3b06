package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deniz/alumlink/internal/app/models/dto"
	"github.com/deniz/alumlink/internal/app/services"
	"github.com/deniz/alumlink/internal/middleware"
)

// MessageController handles mentorship messaging operations
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

// GetMessages retrieves the caller's one-to-one conversation. Mentors select
// the channel with the studentId query parameter; students always get their
// own channel.
func (c *MessageController) GetMessages(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	filter := &dto.GetMessagesRequest{}

	if studentIDStr := ctx.Query("studentId"); studentIDStr != "" {
		studentID, err := strconv.ParseInt(studentIDStr, 10, 64)
		if err != nil || studentID <= 0 {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid student ID")))
			return
		}
		filter.StudentID = &studentID
	}

	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err == nil && limit > 0 && limit <= 200 {
			filter.Limit = limit
		}
	}

	if beforeStr := ctx.Query("before"); beforeStr != "" {
		beforeTime, err := time.Parse(time.RFC3339, beforeStr)
		if err == nil {
			filter.Before = &beforeTime
		}
	}

	messages, err := c.messageService.ListDirect(ctx.Request.Context(), caller, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// SendMessage writes one message onto the caller's one-to-one channel. The
// request is multipart/form-data so a file can be attached.
func (c *MessageController) SendMessage(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())))
		return
	}

	// Attachment is optional
	file, err := ctx.FormFile("file")
	if err != nil {
		file = nil
	}

	message, err := c.messageService.SendDirect(ctx.Request.Context(), caller, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message))
}

// GetGroupMessages retrieves the caller's view of the group channel
func (c *MessageController) GetGroupMessages(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	messages, err := c.messageService.ListGroup(ctx.Request.Context(), caller)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages))
}

// SendGroupMessage fans one message out to every member of the caller's group
func (c *MessageController) SendGroupMessage(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		file = nil
	}

	result, err := c.messageService.SendGroup(ctx.Request.Context(), caller, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(result))
}

// DeleteMessage soft-deletes one of the caller's messages
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	messageID, ok := parseMessageID(ctx)
	if !ok {
		return
	}

	if err := c.messageService.DeleteMessage(ctx.Request.Context(), caller, messageID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Message deleted"}))
}

// AddReaction stores the caller's reaction to a message
func (c *MessageController) AddReaction(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	messageID, ok := parseMessageID(ctx)
	if !ok {
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())))
		return
	}

	reaction, err := c.messageService.React(ctx.Request.Context(), caller, messageID, req.Emoji)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reaction))
}

// RemoveReaction deletes the caller's reaction from a message
func (c *MessageController) RemoveReaction(ctx *gin.Context) {
	caller, ok := callerParty(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	messageID, ok := parseMessageID(ctx)
	if !ok {
		return
	}

	if err := c.messageService.RemoveReaction(ctx.Request.Context(), caller, messageID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Reaction removed"}))
}

// parseMessageID reads the :id path parameter, writing the error response
// itself on failure
func parseMessageID(ctx *gin.Context) (int64, bool) {
	idStr := ctx.Param("id")
	messageID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || messageID <= 0 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid message ID")))
		return 0, false
	}
	return messageID, true
}
