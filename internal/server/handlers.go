package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/purchase-order-builder/internal/converter"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/pkg/utils"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// handleProcess runs one upload through the converter.
func (s *Server) handleProcess(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadMB<<20)

	orderFile, orderErr := c.FormFile("order_file")
	masterFile, masterErr := c.FormFile("master_file")
	if orderErr != nil || masterErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(orderErr, &tooLarge) || errors.As(masterErr, &tooLarge) {
			respondError(c, WrapError(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("업로드 용량이 %dMB를 넘습니다.", s.cfg.MaxUploadMB), nil), nil)
			return
		}
		respondError(c, WrapError(http.StatusBadRequest, "두 파일 모두 업로드해주세요.", nil), nil)
		return
	}

	if !isXLSX(orderFile.Filename) || !isXLSX(masterFile.Filename) {
		respondError(c, WrapError(http.StatusBadRequest, "Excel 파일(.xlsx)만 업로드 가능합니다.", nil), nil)
		return
	}

	orderReader, err := orderFile.Open()
	if err != nil {
		respondError(c, WrapError(http.StatusInternalServerError, "업로드 파일을 읽을 수 없습니다.", err), nil)
		return
	}
	defer orderReader.Close()

	masterReader, err := masterFile.Open()
	if err != nil {
		respondError(c, WrapError(http.StatusInternalServerError, "업로드 파일을 읽을 수 없습니다.", err), nil)
		return
	}
	defer masterReader.Close()

	original := strings.TrimSuffix(filepath.Base(orderFile.Filename), filepath.Ext(orderFile.Filename))
	name := utils.GenerateOutputFileName(s.output.FileNameFormat, map[string]string{"original": original})

	result := s.conv.Run(converter.Job{
		OrderPath:  orderFile.Filename,
		MasterPath: masterFile.Filename,
		OutputPath: filepath.Join(s.resultDir, name),
		Order:      orderReader,
		Master:     masterReader,
	})
	if result.Error != nil {
		respondError(c,
			WrapError(http.StatusInternalServerError, "파일 처리 중 오류가 발생했습니다: "+result.Error.Error(), result.Error),
			errorDetails(result.Error))
		return
	}

	warnings := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Error())
	}

	requestLog(c).Infow("order file processed",
		"run_id", result.ID,
		"order_file", orderFile.Filename,
		"output_file", name,
		"rows", result.Stats.OutputLines,
		"warnings", len(warnings),
	)

	c.JSON(http.StatusOK, ProcessResponse{
		Success:       true,
		Message:       fmt.Sprintf("처리 완료! %d개 행이 처리되었습니다.", result.Stats.OutputLines),
		RowsProcessed: result.Stats.OutputLines,
		DownloadURL:   "/download/" + url.PathEscape(name) + "/",
		Warnings:      warnings,
	})
}

// handleDownload streams a result file as an attachment.
func (s *Server) handleDownload(c *gin.Context) {
	name := c.Param("filename")
	if !validFileName(name) {
		respondError(c, WrapError(http.StatusBadRequest, "잘못된 파일 이름입니다.", nil), nil)
		return
	}

	path := filepath.Join(s.resultDir, name)
	if !utils.FileExists(path) {
		respondError(c, WrapError(http.StatusNotFound, "파일을 찾을 수 없습니다.", nil), nil)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.FileAttachment(path, name)
}

func isXLSX(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// validFileName accepts a bare file name inside the result directory.
func validFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// errorDetails exposes where in the workbook a run failed.
func errorDetails(err error) gin.H {
	var shapeErr *types.DataShapeError
	if errors.As(err, &shapeErr) {
		return gin.H{
			"sheet":  shapeErr.Sheet,
			"row":    shapeErr.Row,
			"column": shapeErr.Column,
			"value":  shapeErr.Value,
		}
	}

	var missingErr *types.MissingTableError
	if errors.As(err, &missingErr) {
		return gin.H{
			"sheet":     missingErr.Wanted,
			"available": missingErr.Available,
		}
	}
	return nil
}
