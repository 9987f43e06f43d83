package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func getIDParam(ctx *gin.Context, name string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New(name + " not found")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(id), nil
}

func GetGroupID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "group_id")
}

func GetOrderID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "order_id")
}

func GetUserID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "user_id")
}

func GetNotificationID(ctx *gin.Context) (uint, error) {
	return getIDParam(ctx, "id")
}
