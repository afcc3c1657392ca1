package service

import "agrocal/pkg/redistribution/types"

type RedistributionService interface {
	CompleteWithHectares(req types.CompleteRequest) (*types.CompleteResult, error)
}
