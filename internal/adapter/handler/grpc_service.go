package handler

import (
	"context"

	"google.golang.org/grpc"
)

const (
	bottlerServiceName       = "potionshop.bottler.v1.Bottler"
	getBottlePlanFullMethod  = "/" + bottlerServiceName + "/GetBottlePlan"
	deliverPotionsFullMethod = "/" + bottlerServiceName + "/DeliverPotions"
)

type GetBottlePlanRequest struct{}

type GetBottlePlanResponse struct {
	Plan []PotionQuantityJSON `json:"plan"`
}

type DeliverPotionsRequest struct {
	OrderID int                  `json:"order_id"`
	Potions []PotionQuantityJSON `json:"potions"`
}

type DeliverPotionsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// BottlerServer is the server API for the bottler gRPC service.
type BottlerServer interface {
	GetBottlePlan(context.Context, *GetBottlePlanRequest) (*GetBottlePlanResponse, error)
	DeliverPotions(context.Context, *DeliverPotionsRequest) (*DeliverPotionsResponse, error)
}

func RegisterBottlerServer(s grpc.ServiceRegistrar, srv BottlerServer) {
	s.RegisterService(&bottlerServiceDesc, srv)
}

var bottlerServiceDesc = grpc.ServiceDesc{
	ServiceName: bottlerServiceName,
	HandlerType: (*BottlerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetBottlePlan", Handler: getBottlePlanHandler},
		{MethodName: "DeliverPotions", Handler: deliverPotionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "potionshop/bottler/v1/bottler.proto",
}

func getBottlePlanHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetBottlePlanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BottlerServer).GetBottlePlan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getBottlePlanFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BottlerServer).GetBottlePlan(ctx, req.(*GetBottlePlanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deliverPotionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeliverPotionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BottlerServer).DeliverPotions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: deliverPotionsFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BottlerServer).DeliverPotions(ctx, req.(*DeliverPotionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// BottlerClient calls the bottler service using the JSON codec.
type BottlerClient struct {
	cc grpc.ClientConnInterface
}

func NewBottlerClient(cc grpc.ClientConnInterface) *BottlerClient {
	return &BottlerClient{cc: cc}
}

func (c *BottlerClient) GetBottlePlan(ctx context.Context, in *GetBottlePlanRequest, opts ...grpc.CallOption) (*GetBottlePlanResponse, error) {
	out := new(GetBottlePlanResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, getBottlePlanFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BottlerClient) DeliverPotions(ctx context.Context, in *DeliverPotionsRequest, opts ...grpc.CallOption) (*DeliverPotionsResponse, error) {
	out := new(DeliverPotionsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	if err := c.cc.Invoke(ctx, deliverPotionsFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
