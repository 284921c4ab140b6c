package handler

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/core/service"
)

// ReasonInsufficientStock tags the ErrorInfo detail attached to stock failures.
const ReasonInsufficientStock = "INSUFFICIENT_STOCK"

var _ BottlerServer = (*GRPCHandler)(nil)

type GRPCHandler struct {
	bottler *service.BottlerService
}

func NewGRPCHandler(bottler *service.BottlerService) *GRPCHandler {
	return &GRPCHandler{bottler: bottler}
}

func (h *GRPCHandler) GetBottlePlan(ctx context.Context, req *GetBottlePlanRequest) (*GetBottlePlanResponse, error) {
	plan, err := h.bottler.GetBottlePlan(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return &GetBottlePlanResponse{Plan: fromPlan(plan)}, nil
}

func (h *GRPCHandler) DeliverPotions(ctx context.Context, req *DeliverPotionsRequest) (*DeliverPotionsResponse, error) {
	items, err := toDeliveryItems(req.Potions)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	err = h.bottler.DeliverPotions(ctx, req.OrderID, items)
	if err != nil {
		var short *domain.InsufficientStockError
		if errors.As(err, &short) {
			st := status.New(codes.FailedPrecondition, short.Error())
			detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
				Reason:   ReasonInsufficientStock,
				Domain:   "bottler.potionshop",
				Metadata: map[string]string{"channel": short.Channel.String()},
			})
			if detailErr != nil {
				return nil, st.Err()
			}
			return nil, detailed.Err()
		}
		if errors.Is(err, service.ErrDuplicateDelivery) {
			return nil, status.Error(codes.Aborted, "delivery in progress")
		}
		if errors.Is(err, service.ErrInvalidDelivery) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &DeliverPotionsResponse{
		Status:  "success",
		Message: "delivery processed successfully",
	}, nil
}

// InsufficientChannel extracts the short channel from a DeliverPotions error.
func InsufficientChannel(err error) (domain.Channel, bool) {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.FailedPrecondition {
		return 0, false
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetReason() != ReasonInsufficientStock {
			continue
		}
		return domain.ParseChannel(info.GetMetadata()["channel"])
	}
	return 0, false
}
