package model

import (
	"github.com/google/uuid"
)

type (
	// Blueprint is a reusable infrastructure definition fetched from the IDP API.
	Blueprint struct {
		Id                      uuid.UUID           `json:"id"`
		Name                    string              `json:"name"`
		Description             string              `json:"description,omitempty"`
		Resources               []BlueprintResource `json:"resources"`
		SupportedCloudProviders []CloudProvider     `json:"supported_cloud_providers"`
	}

	BlueprintResource struct {
		Id                      uuid.UUID      `json:"id"`
		Name                    string         `json:"name"`
		Description             string         `json:"description,omitempty"`
		ResourceType            ResourceType   `json:"resource_type"`
		CloudProvider           CloudProvider  `json:"cloud_provider"`
		Configuration           map[string]any `json:"configuration"`
		CloudSpecificProperties map[string]any `json:"cloud_specific_properties"`
	}

	// Stack is a deployed (or deployable) instantiation of a blueprint.
	Stack struct {
		Id             uuid.UUID       `json:"id"`
		Name           string          `json:"name"`
		Description    string          `json:"description,omitempty"`
		CloudName      string          `json:"cloud_name"`
		StackType      string          `json:"stack_type"`
		StackResources []StackResource `json:"stack_resources"`
		Blueprint      *Blueprint      `json:"blueprint,omitempty"`
	}

	StackResource struct {
		Id            uuid.UUID      `json:"id"`
		Name          string         `json:"name"`
		Description   string         `json:"description,omitempty"`
		ResourceType  ResourceType   `json:"resource_type"`
		CloudProvider CloudProvider  `json:"cloud_provider"`
		Configuration map[string]any `json:"configuration"`
	}

	ResourceType struct {
		Id       uuid.UUID `json:"id"`
		Name     string    `json:"name"`
		Category string    `json:"category"`
	}

	CloudProvider struct {
		Id          uuid.UUID `json:"id"`
		Name        string    `json:"name"`
		DisplayName string    `json:"display_name"`
	}
)
