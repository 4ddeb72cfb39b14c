package server

import (
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Text string `json:"text"`
}

// AddComment handles PATCH /api/posts/comment/:postId
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body object{text=string} true "Comment"
// @Success 200 {object} object{message=string,comment=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{postId} [patch]
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: currentUserID(c),
		PostID: postID,
		Text:   req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Comment created.",
		"comment": comment,
	})
}

// UpdateComment handles PATCH /api/posts/comment/:postId/:commentId
// @Summary Edit comment
// @Description Only the comment's author may edit it
// @Tags comments
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path string true "Comment ID"
// @Param request body object{text=string} true "New text"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{postId}/{commentId} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	err = s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		PostID:    postID,
		CommentID: c.Params("commentId"),
		Text:      req.Text,
	})
	if err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Comment updated.")
}

// DeleteComment handles DELETE /api/posts/comment/:postId/:commentId
// @Summary Delete comment
// @Tags comments
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/comment/{postId}/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	err = s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    currentUserID(c),
		PostID:    postID,
		CommentID: c.Params("commentId"),
	})
	if err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Comment deleted.")
}
