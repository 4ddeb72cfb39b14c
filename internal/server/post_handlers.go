package server

import (
	"socialhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

type captionRequest struct {
	Caption string `json:"caption"`
}

// CreatePost handles POST /api/posts/create
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{caption=string} true "Post"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/create [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req captionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		OwnerID: currentUserID(c),
		Caption: req.Caption,
	})
	if err != nil {
		return err
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/posts/update/:postId
// @Summary Edit caption
// @Description Only the owner may edit a post
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param request body object{caption=string} true "New caption"
// @Success 200 {object} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/update/{postId} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	var req captionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Caption: req.Caption,
	})
	if err != nil {
		return err
	}
	return c.JSON(post)
}

// GetMyPosts handles GET /api/posts/my-posts
// @Summary List own posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/my-posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListMyPosts(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

// GetFollowingPosts handles GET /api/posts/get-posts
// @Summary List posts of followed users
// @Tags posts
// @Produce json
// @Success 200 {object} object{posts=[]models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/get-posts [get]
func (s *Server) GetFollowingPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListFollowingPosts(c.UserContext(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// LikeUnlikePost handles PATCH /api/posts/like-unlike/:postId
// @Summary Like or unlike
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/like-unlike/{postId} [patch]
func (s *Server) LikeUnlikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	liked, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return err
	}
	if liked {
		return message(c, fiber.StatusOK, "Post liked.")
	}
	return message(c, fiber.StatusOK, "Post unliked.")
}

// DeletePost handles DELETE /api/posts/delete/:postId
// @Summary Delete post
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/delete/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return err
	}
	return message(c, fiber.StatusOK, "Post deleted.")
}
