package domain

import "encoding/json"

// USDAFood is a single candidate from the USDA FoodData Central search API.
type USDAFood struct {
	FdcID        int64          `json:"fdcId"`
	Description  string         `json:"description"`
	DataType     string         `json:"dataType"`
	FoodCategory USDACategory   `json:"foodCategory,omitempty"`
	Nutrients    []USDANutrient `json:"foodNutrients,omitempty"`
}

// USDACategory tolerates both shapes the API uses for food categories:
// a plain string on search results and {"description": ...} on detail
// records. Anything else decodes to empty rather than failing the whole
// response.
type USDACategory string

func (c *USDACategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = USDACategory(s)
		return nil
	}
	var obj struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*c = USDACategory(obj.Description)
		return nil
	}
	*c = ""
	return nil
}

// USDANutrient is a single nutrient entry on a USDA food record.
type USDANutrient struct {
	NutrientID   int64   `json:"nutrientId"`
	NutrientName string  `json:"nutrientName,omitempty"`
	UnitName     string  `json:"unitName,omitempty"`
	Value        float64 `json:"value"`
}

// USDASearchResponse is the response from the USDA food search endpoint.
type USDASearchResponse struct {
	Foods       []USDAFood `json:"foods"`
	TotalHits   int        `json:"totalHits"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
}
