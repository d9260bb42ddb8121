package rpc

import (
	"context"
	"reflect"

	"google.golang.org/grpc"
)

const (
	VisibilityServiceName  = "matrimony.v1.VisibilityService"
	ViewServiceName        = "matrimony.v1.ViewService"
	PaymentServiceName     = "matrimony.v1.PaymentService"
	ModerationServiceName  = "matrimony.v1.ModerationService"
	EntitlementServiceName = "matrimony.v1.EntitlementService"
)

// methodTypes maps a full method name to its request and response types.
// The matrimony.v1 descriptor is built from it.
var methodTypes = map[string][2]reflect.Type{}

// unary builds a MethodDesc that decodes Req, runs the interceptor chain and
// dispatches to call.
func unary[Req, Resp any](service, method string, call func(srv any, ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	methodTypes[fullMethod] = [2]reflect.Type{reflect.TypeFor[Req](), reflect.TypeFor[Resp]()}
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+service+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// --- VisibilityService ---

type VisibilityServer interface {
	ListVisibleProfiles(context.Context, *ListVisibleProfilesRequest) (*ListVisibleProfilesResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
}

var visibilityServiceDesc = grpc.ServiceDesc{
	ServiceName: VisibilityServiceName,
	Metadata:    ProtoFile,
	HandlerType: (*VisibilityServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(VisibilityServiceName, "ListVisibleProfiles", func(srv any, ctx context.Context, req *ListVisibleProfilesRequest) (*ListVisibleProfilesResponse, error) {
			return srv.(VisibilityServer).ListVisibleProfiles(ctx, req)
		}),
		unary(VisibilityServiceName, "GetProfile", func(srv any, ctx context.Context, req *GetProfileRequest) (*GetProfileResponse, error) {
			return srv.(VisibilityServer).GetProfile(ctx, req)
		}),
	},
}

func RegisterVisibilityServer(s grpc.ServiceRegistrar, srv VisibilityServer) {
	s.RegisterService(&visibilityServiceDesc, srv)
}

type VisibilityClient struct{ cc grpc.ClientConnInterface }

func NewVisibilityClient(cc grpc.ClientConnInterface) *VisibilityClient {
	return &VisibilityClient{cc: cc}
}

func (c *VisibilityClient) ListVisibleProfiles(ctx context.Context, in *ListVisibleProfilesRequest, opts ...grpc.CallOption) (*ListVisibleProfilesResponse, error) {
	return invoke[ListVisibleProfilesResponse](ctx, c.cc, VisibilityServiceName, "ListVisibleProfiles", in, opts)
}

func (c *VisibilityClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error) {
	return invoke[GetProfileResponse](ctx, c.cc, VisibilityServiceName, "GetProfile", in, opts)
}

// --- ViewService ---

type ViewServer interface {
	RecordView(context.Context, *RecordViewRequest) (*RecordViewResponse, error)
	GetViewStats(context.Context, *GetViewStatsRequest) (*GetViewStatsResponse, error)
	ListViewedProfiles(context.Context, *ListViewedProfilesRequest) (*ListViewedProfilesResponse, error)
}

var viewServiceDesc = grpc.ServiceDesc{
	ServiceName: ViewServiceName,
	Metadata:    ProtoFile,
	HandlerType: (*ViewServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ViewServiceName, "RecordView", func(srv any, ctx context.Context, req *RecordViewRequest) (*RecordViewResponse, error) {
			return srv.(ViewServer).RecordView(ctx, req)
		}),
		unary(ViewServiceName, "GetViewStats", func(srv any, ctx context.Context, req *GetViewStatsRequest) (*GetViewStatsResponse, error) {
			return srv.(ViewServer).GetViewStats(ctx, req)
		}),
		unary(ViewServiceName, "ListViewedProfiles", func(srv any, ctx context.Context, req *ListViewedProfilesRequest) (*ListViewedProfilesResponse, error) {
			return srv.(ViewServer).ListViewedProfiles(ctx, req)
		}),
	},
}

func RegisterViewServer(s grpc.ServiceRegistrar, srv ViewServer) {
	s.RegisterService(&viewServiceDesc, srv)
}

type ViewClient struct{ cc grpc.ClientConnInterface }

func NewViewClient(cc grpc.ClientConnInterface) *ViewClient { return &ViewClient{cc: cc} }

func (c *ViewClient) RecordView(ctx context.Context, in *RecordViewRequest, opts ...grpc.CallOption) (*RecordViewResponse, error) {
	return invoke[RecordViewResponse](ctx, c.cc, ViewServiceName, "RecordView", in, opts)
}

func (c *ViewClient) GetViewStats(ctx context.Context, in *GetViewStatsRequest, opts ...grpc.CallOption) (*GetViewStatsResponse, error) {
	return invoke[GetViewStatsResponse](ctx, c.cc, ViewServiceName, "GetViewStats", in, opts)
}

func (c *ViewClient) ListViewedProfiles(ctx context.Context, in *ListViewedProfilesRequest, opts ...grpc.CallOption) (*ListViewedProfilesResponse, error) {
	return invoke[ListViewedProfilesResponse](ctx, c.cc, ViewServiceName, "ListViewedProfiles", in, opts)
}

// --- PaymentService ---

type PaymentServer interface {
	Checkout(context.Context, *CheckoutRequest) (*PaymentResponse, error)
	SubmitScreenshot(context.Context, *SubmitScreenshotRequest) (*PaymentResponse, error)
	GatewayCallback(context.Context, *GatewayCallbackRequest) (*PaymentResponse, error)
	ReviewPayment(context.Context, *ReviewPaymentRequest) (*PaymentResponse, error)
	ListPayments(context.Context, *ListPaymentsRequest) (*ListPaymentsResponse, error)
}

var paymentServiceDesc = grpc.ServiceDesc{
	ServiceName: PaymentServiceName,
	Metadata:    ProtoFile,
	HandlerType: (*PaymentServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(PaymentServiceName, "Checkout", func(srv any, ctx context.Context, req *CheckoutRequest) (*PaymentResponse, error) {
			return srv.(PaymentServer).Checkout(ctx, req)
		}),
		unary(PaymentServiceName, "SubmitScreenshot", func(srv any, ctx context.Context, req *SubmitScreenshotRequest) (*PaymentResponse, error) {
			return srv.(PaymentServer).SubmitScreenshot(ctx, req)
		}),
		unary(PaymentServiceName, "GatewayCallback", func(srv any, ctx context.Context, req *GatewayCallbackRequest) (*PaymentResponse, error) {
			return srv.(PaymentServer).GatewayCallback(ctx, req)
		}),
		unary(PaymentServiceName, "ReviewPayment", func(srv any, ctx context.Context, req *ReviewPaymentRequest) (*PaymentResponse, error) {
			return srv.(PaymentServer).ReviewPayment(ctx, req)
		}),
		unary(PaymentServiceName, "ListPayments", func(srv any, ctx context.Context, req *ListPaymentsRequest) (*ListPaymentsResponse, error) {
			return srv.(PaymentServer).ListPayments(ctx, req)
		}),
	},
}

func RegisterPaymentServer(s grpc.ServiceRegistrar, srv PaymentServer) {
	s.RegisterService(&paymentServiceDesc, srv)
}

type PaymentClient struct{ cc grpc.ClientConnInterface }

func NewPaymentClient(cc grpc.ClientConnInterface) *PaymentClient { return &PaymentClient{cc: cc} }

func (c *PaymentClient) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*PaymentResponse, error) {
	return invoke[PaymentResponse](ctx, c.cc, PaymentServiceName, "Checkout", in, opts)
}

func (c *PaymentClient) SubmitScreenshot(ctx context.Context, in *SubmitScreenshotRequest, opts ...grpc.CallOption) (*PaymentResponse, error) {
	return invoke[PaymentResponse](ctx, c.cc, PaymentServiceName, "SubmitScreenshot", in, opts)
}

func (c *PaymentClient) GatewayCallback(ctx context.Context, in *GatewayCallbackRequest, opts ...grpc.CallOption) (*PaymentResponse, error) {
	return invoke[PaymentResponse](ctx, c.cc, PaymentServiceName, "GatewayCallback", in, opts)
}

func (c *PaymentClient) ReviewPayment(ctx context.Context, in *ReviewPaymentRequest, opts ...grpc.CallOption) (*PaymentResponse, error) {
	return invoke[PaymentResponse](ctx, c.cc, PaymentServiceName, "ReviewPayment", in, opts)
}

func (c *PaymentClient) ListPayments(ctx context.Context, in *ListPaymentsRequest, opts ...grpc.CallOption) (*ListPaymentsResponse, error) {
	return invoke[ListPaymentsResponse](ctx, c.cc, PaymentServiceName, "ListPayments", in, opts)
}

// --- ModerationService ---

type ModerationServer interface {
	RegisterProfile(context.Context, *RegisterProfileRequest) (*RegisterProfileResponse, error)
	TransitionProfile(context.Context, *TransitionProfileRequest) (*ModerationResponse, error)
	GetModeration(context.Context, *GetModerationRequest) (*ModerationResponse, error)
	ListProfilesByStatus(context.Context, *ListProfilesByStatusRequest) (*ListProfilesByStatusResponse, error)
	EraseMember(context.Context, *EraseMemberRequest) (*EraseMemberResponse, error)
}

var moderationServiceDesc = grpc.ServiceDesc{
	ServiceName: ModerationServiceName,
	Metadata:    ProtoFile,
	HandlerType: (*ModerationServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ModerationServiceName, "RegisterProfile", func(srv any, ctx context.Context, req *RegisterProfileRequest) (*RegisterProfileResponse, error) {
			return srv.(ModerationServer).RegisterProfile(ctx, req)
		}),
		unary(ModerationServiceName, "TransitionProfile", func(srv any, ctx context.Context, req *TransitionProfileRequest) (*ModerationResponse, error) {
			return srv.(ModerationServer).TransitionProfile(ctx, req)
		}),
		unary(ModerationServiceName, "GetModeration", func(srv any, ctx context.Context, req *GetModerationRequest) (*ModerationResponse, error) {
			return srv.(ModerationServer).GetModeration(ctx, req)
		}),
		unary(ModerationServiceName, "ListProfilesByStatus", func(srv any, ctx context.Context, req *ListProfilesByStatusRequest) (*ListProfilesByStatusResponse, error) {
			return srv.(ModerationServer).ListProfilesByStatus(ctx, req)
		}),
		unary(ModerationServiceName, "EraseMember", func(srv any, ctx context.Context, req *EraseMemberRequest) (*EraseMemberResponse, error) {
			return srv.(ModerationServer).EraseMember(ctx, req)
		}),
	},
}

func RegisterModerationServer(s grpc.ServiceRegistrar, srv ModerationServer) {
	s.RegisterService(&moderationServiceDesc, srv)
}

type ModerationClient struct{ cc grpc.ClientConnInterface }

func NewModerationClient(cc grpc.ClientConnInterface) *ModerationClient {
	return &ModerationClient{cc: cc}
}

func (c *ModerationClient) RegisterProfile(ctx context.Context, in *RegisterProfileRequest, opts ...grpc.CallOption) (*RegisterProfileResponse, error) {
	return invoke[RegisterProfileResponse](ctx, c.cc, ModerationServiceName, "RegisterProfile", in, opts)
}

func (c *ModerationClient) TransitionProfile(ctx context.Context, in *TransitionProfileRequest, opts ...grpc.CallOption) (*ModerationResponse, error) {
	return invoke[ModerationResponse](ctx, c.cc, ModerationServiceName, "TransitionProfile", in, opts)
}

func (c *ModerationClient) GetModeration(ctx context.Context, in *GetModerationRequest, opts ...grpc.CallOption) (*ModerationResponse, error) {
	return invoke[ModerationResponse](ctx, c.cc, ModerationServiceName, "GetModeration", in, opts)
}

func (c *ModerationClient) ListProfilesByStatus(ctx context.Context, in *ListProfilesByStatusRequest, opts ...grpc.CallOption) (*ListProfilesByStatusResponse, error) {
	return invoke[ListProfilesByStatusResponse](ctx, c.cc, ModerationServiceName, "ListProfilesByStatus", in, opts)
}

func (c *ModerationClient) EraseMember(ctx context.Context, in *EraseMemberRequest, opts ...grpc.CallOption) (*EraseMemberResponse, error) {
	return invoke[EraseMemberResponse](ctx, c.cc, ModerationServiceName, "EraseMember", in, opts)
}

// --- EntitlementService ---

type EntitlementServer interface {
	GrantPackage(context.Context, *GrantPackageRequest) (*ModerationResponse, error)
	GrantAddon(context.Context, *GrantAddonRequest) (*ModerationResponse, error)
	SetViewsLimit(context.Context, *SetViewsLimitRequest) (*ModerationResponse, error)
}

var entitlementServiceDesc = grpc.ServiceDesc{
	ServiceName: EntitlementServiceName,
	Metadata:    ProtoFile,
	HandlerType: (*EntitlementServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(EntitlementServiceName, "GrantPackage", func(srv any, ctx context.Context, req *GrantPackageRequest) (*ModerationResponse, error) {
			return srv.(EntitlementServer).GrantPackage(ctx, req)
		}),
		unary(EntitlementServiceName, "GrantAddon", func(srv any, ctx context.Context, req *GrantAddonRequest) (*ModerationResponse, error) {
			return srv.(EntitlementServer).GrantAddon(ctx, req)
		}),
		unary(EntitlementServiceName, "SetViewsLimit", func(srv any, ctx context.Context, req *SetViewsLimitRequest) (*ModerationResponse, error) {
			return srv.(EntitlementServer).SetViewsLimit(ctx, req)
		}),
	},
}

func RegisterEntitlementServer(s grpc.ServiceRegistrar, srv EntitlementServer) {
	s.RegisterService(&entitlementServiceDesc, srv)
}

type EntitlementClient struct{ cc grpc.ClientConnInterface }

func NewEntitlementClient(cc grpc.ClientConnInterface) *EntitlementClient {
	return &EntitlementClient{cc: cc}
}

func (c *EntitlementClient) GrantPackage(ctx context.Context, in *GrantPackageRequest, opts ...grpc.CallOption) (*ModerationResponse, error) {
	return invoke[ModerationResponse](ctx, c.cc, EntitlementServiceName, "GrantPackage", in, opts)
}

func (c *EntitlementClient) GrantAddon(ctx context.Context, in *GrantAddonRequest, opts ...grpc.CallOption) (*ModerationResponse, error) {
	return invoke[ModerationResponse](ctx, c.cc, EntitlementServiceName, "GrantAddon", in, opts)
}

func (c *EntitlementClient) SetViewsLimit(ctx context.Context, in *SetViewsLimitRequest, opts ...grpc.CallOption) (*ModerationResponse, error) {
	return invoke[ModerationResponse](ctx, c.cc, EntitlementServiceName, "SetViewsLimit", in, opts)
}
