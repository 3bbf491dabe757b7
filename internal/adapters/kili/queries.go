package kili

import "encoding/json"

const assetsQuery = `query assets($where: AssetWhere!, $first: PageSize!, $skip: Int!) {
  data: assets(where: $where, first: $first, skip: $skip) {
    id
    externalId
    jsonMetadata
  }
}`

const labelsQuery = `query labels($where: LabelWhere!, $first: PageSize!, $skip: Int!) {
  data: labels(where: $where, first: $first, skip: $skip) {
    assetId
    secondsToLabel
    jsonResponse
    type
    author {
      email
      firstname
      lastname
    }
    createdAt
  }
}`

type projectWhere struct {
	ID string `json:"id"`
}

type assetWhere struct {
	Project  projectWhere `json:"project"`
	StatusIn []string     `json:"statusIn"`
}

type labelAssetWhere struct {
	ExternalIDStrictlyIn []string `json:"externalIdStrictlyIn"`
}

type labelWhere struct {
	Project projectWhere    `json:"project"`
	Asset   labelAssetWhere `json:"asset"`
	TypeIn  []string        `json:"typeIn"`
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type response[T any] struct {
	Data *struct {
		Data []T `json:"data"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type assetRow struct {
	ID           string          `json:"id"`
	ExternalID   string          `json:"externalId"`
	JSONMetadata json.RawMessage `json:"jsonMetadata"`
}

type labelRow struct {
	AssetID        string          `json:"assetId"`
	SecondsToLabel *float64        `json:"secondsToLabel"`
	JSONResponse   json.RawMessage `json:"jsonResponse"`
	Type           string          `json:"type"`
	Author         *struct {
		Email     string `json:"email"`
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
	} `json:"author"`
	CreatedAt string `json:"createdAt"`
}
