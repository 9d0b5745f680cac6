package server

import (
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateTweet posts a tweet on the requester's channel
// @Summary Create tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Param request body object{content=string} true "Tweet"
// @Success 201 {object} models.APIResponse{data=models.Tweet}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tweets [post]
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	var req contentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	tweet, err := s.tweetService.Create(c.UserContext(), requesterID(c), req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, tweet, "Tweet created successfully")
}

// GetUserTweets lists a user's tweets, newest first
// @Summary User tweets
// @Tags tweets
// @Produce json
// @Param userId path string true "User id"
// @Success 200 {object} models.APIResponse{data=[]models.TweetView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tweets/user/{userId} [get]
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	tweets, err := s.tweetService.ListByUser(c.UserContext(), c.Params("userId"), requesterID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, tweets, "Tweets fetched successfully")
}

// UpdateTweet edits the requester's tweet
// @Summary Update tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Param tweetId path string true "Tweet id"
// @Param request body object{content=string} true "Tweet"
// @Success 200 {object} models.APIResponse{data=models.Tweet}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tweets/{tweetId} [patch]
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	req := bindContent(c)

	tweet, err := s.tweetService.Update(c.UserContext(), c.Params("tweetId"), requesterID(c), req.Content)
	if err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, tweet, "Tweet updated successfully")
}

// DeleteTweet removes the requester's tweet and its likes
// @Summary Delete tweet
// @Tags tweets
// @Produce json
// @Param tweetId path string true "Tweet id"
// @Success 200 {object} models.APIResponse{data=object{tweetId=string}}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tweets/{tweetId} [delete]
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	tweetID := c.Params("tweetId")
	if err := s.tweetService.Delete(c.UserContext(), tweetID, requesterID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"tweetId": tweetID}, "Tweet deleted successfully")
}
