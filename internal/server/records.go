package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	dailyrecorddomain "github.com/smallbiznis/benchstay/internal/dailyrecord/domain"
)

// maxImportBytes caps the uploaded workbook size.
const maxImportBytes = 10 << 20

type writeRecordRequest struct {
	HotelID snowflake.ID `json:"hotel_id"`
	dailyrecorddomain.WriteRequest
}

func (s *Server) WriteRecord(c *gin.Context) {
	var req writeRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.HotelID <= 0 {
		AbortWithError(c, newValidationError("hotel_id", "invalid_hotel_id", "hotel_id is required"))
		return
	}
	write := req.WriteRequest
	write.HotelID = req.HotelID

	record, err := s.recordSvc.Write(c.Request.Context(), write)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

type listRecordsQuery struct {
	Kind      string `form:"kind"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     string `form:"limit"`
}

func (s *Server) ListRecords(c *gin.Context) {
	var query listRecordsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	start, err := parseOptionalDate(query.StartDate, "start_date")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	end, err := parseOptionalDate(query.EndDate, "end_date")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	limit, err := parseLimit(query.Limit, 50, 500)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	records, err := s.recordSvc.List(c.Request.Context(), dailyrecorddomain.ListFilter{
		HotelID:   hotelIDFrom(c),
		Kind:      query.Kind,
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) GetRecord(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.recordSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) UpdateRecord(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	var req dailyrecorddomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.recordSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) DeleteRecord(c *gin.Context) {
	id, err := parseIDParam(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.recordSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ImportWorkbook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "an .xlsx file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	result, err := s.importer.Import(c.Request.Context(), hotelIDFrom(c), file)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
