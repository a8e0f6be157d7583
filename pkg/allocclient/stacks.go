package allocclient

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// PreloadAssignment mirrors the allocation service's preload assignment
// document.
type PreloadAssignment struct {
	ID              string    `json:"ID"`
	StackID         uint64    `json:"StackID"`
	State           string    `json:"State"`
	CreatedAt       time.Time `json:"CreatedAt"`
	UpdateTimestamp time.Time `json:"UpdateTimestamp"`
}

type nextStackIDResponse struct {
	StackID uint64 `json:"stack_id"`
}

// NextStackID allocates a new, never-reused stack identifier. It
// satisfies stackwriter.StackIDAllocator, letting a Writer be wired
// directly against a remote allocation service.
func (c *Client) NextStackID(ctx context.Context) (uint64, error) {
	var resp nextStackIDResponse
	if err := c.post(ctx, "/v1/stacks/next_id", nil, &resp); err != nil {
		return 0, err
	}
	return resp.StackID, nil
}

type locationsRequest struct {
	Locations []string `json:"locations"`
}

// RegisterStackSource records that stackID's three sibling objects can
// be found at the given object-store locations.
func (c *Client) RegisterStackSource(ctx context.Context, stackID uint64, locations []string) error {
	return c.put(ctx, fmt.Sprintf("/v1/stacks/%d/source", stackID), locationsRequest{Locations: locations}, nil)
}

// DeRegisterStackSource removes locations from stackID's registered
// source set.
func (c *Client) DeRegisterStackSource(ctx context.Context, stackID uint64, locations []string) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/v1/stacks/%d/source", stackID), locationsRequest{Locations: locations}, nil)
}

// QueryRegisteredSource returns the object-store locations registered
// for stackID.
func (c *Client) QueryRegisteredSource(ctx context.Context, stackID uint64) ([]string, error) {
	var resp locationsRequest
	if err := c.get(ctx, fmt.Sprintf("/v1/stacks/%d/source", stackID), &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

// LocateStack returns every preload assignment for stackID.
func (c *Client) LocateStack(ctx context.Context, stackID uint64) ([]PreloadAssignment, error) {
	var assignments []PreloadAssignment
	if err := c.get(ctx, fmt.Sprintf("/v1/stacks/%d/preloads", stackID), &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

type preLoadRequest struct {
	Replicas int `json:"replicas"`
}

// PreLoad requests replicas copies of stackID be preloaded onto the
// worker fleet, returning the resulting assignment set.
func (c *Client) PreLoad(ctx context.Context, stackID uint64, replicas int) ([]PreloadAssignment, error) {
	var assignments []PreloadAssignment
	if err := c.post(ctx, fmt.Sprintf("/v1/stacks/%d/preloads", stackID), preLoadRequest{Replicas: replicas}, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UnPreLoad marks every preload assignment for stackID for teardown.
func (c *Client) UnPreLoad(ctx context.Context, stackID uint64) error {
	return c.delete(ctx, fmt.Sprintf("/v1/stacks/%d/preloads", stackID), nil)
}

type assignmentStateRequest struct {
	State string `json:"state"`
}

// UpdateAssignmentState reports an assignment's lifecycle transition
// (Init -> Loading -> Loaded) to the allocation service. The preload
// worker fleet is the only caller expected to use this method.
func (c *Client) UpdateAssignmentState(ctx context.Context, assignmentID, state string) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/preloads/%s/state", assignmentID),
		assignmentStateRequest{State: state}, nil)
}
